package constant

type Category string

const (
	CategoryFilm    Category = "film"
	CategoryPoster  Category = "poster"
	CategoryTrailer Category = "trailer"
)

func (c Category) String() string {
	return string(c)
}

// Code is the single-letter tag a category's artifact is stored under.
func (c Category) Code() string {
	switch c {
	case CategoryFilm:
		return "m"
	case CategoryPoster:
		return "p"
	case CategoryTrailer:
		return "t"
	}
	return ""
}

func (c Category) Valid() bool {
	return c.Code() != ""
}

func Categories() []Category {
	return []Category{CategoryFilm, CategoryPoster, CategoryTrailer}
}

// AllowedExtensions lists the accepted upload extensions per category code,
// lowercase with leading dot.
var AllowedExtensions = map[string][]string{
	"m": {".mp4", ".mkv", ".avi"},
	"t": {".mp4", ".mov", ".webm"},
	"p": {".jpg", ".jpeg", ".png"},
}

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCompleted  JobStatus = "COMPLETED"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}

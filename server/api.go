package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"movie-file-service/constant"
	"movie-file-service/dto"
	"movie-file-service/service"
)

type api struct {
	ingest    service.IngestService
	lifecycle service.LifecycleService
}

func registerRoutes(r *gin.Engine, ingest service.IngestService, lifecycle service.LifecycleService) {
	a := api{ingest: ingest, lifecycle: lifecycle}
	r.POST("/upload/:movie_id/:category", a.upload)
	r.DELETE("/files/:movie_id/:category", a.deleteArtifact)
	r.DELETE("/files/:movie_id", a.deleteAll)
}

func (a api) upload(c *gin.Context) {
	movieID := c.Param("movie_id")
	category := constant.Category(c.Param("category"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "No file provided"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	defer file.Close()

	fileURL, err := a.ingest.Ingest(c.Request.Context(), movieID, category, fileHeader.Filename, file)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: vErr.Msg})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{MovieID: movieID, FileURL: fileURL})
}

func (a api) deleteArtifact(c *gin.Context) {
	movieID := c.Param("movie_id")
	category := constant.Category(c.Param("category"))

	found, err := a.lifecycle.DeleteArtifact(c.Request.Context(), movieID, category)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: vErr.Msg})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if !found {
		c.JSON(http.StatusOK, gin.H{"message": "nothing found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (a api) deleteAll(c *gin.Context) {
	resp := a.lifecycle.DeleteAllArtifacts(c.Request.Context(), c.Param("movie_id"))

	status := http.StatusOK
	if resp.Status == dto.DeleteStatusFailed {
		status = http.StatusInternalServerError
	}
	c.JSON(status, resp)
}

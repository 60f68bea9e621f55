package ftpstore

import (
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

// ErrTransport marks failures reaching or authenticating against the
// storage server, as opposed to a path that simply is not there.
var ErrTransport = errors.New("storage transport error")

// Client talks to an FTP storage backend. Every operation opens a fresh
// authenticated connection; there is no pooling and no shared state, so a
// Client is safe for concurrent use.
type Client struct {
	host    string
	port    int
	user    string
	pass    string
	timeout time.Duration
}

func New(host string, port int, user, pass string, timeout time.Duration) *Client {
	if port == 0 {
		port = 21
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{host: host, port: port, user: user, pass: pass, timeout: timeout}
}

func (c *Client) connect() (*ftp.ServerConn, error) {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(c.timeout))
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, addr, err)
	}
	if err := conn.Login(c.user, c.pass); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("%w: login %s: %v", ErrTransport, addr, err)
	}
	return conn, nil
}

// notFound reports whether err is the server telling us a path is absent
// rather than the transfer itself failing.
func notFound(err error) bool {
	var proto *textproto.Error
	if errors.As(err, &proto) {
		return proto.Code == ftp.StatusFileUnavailable
	}
	return false
}

// EnsureDir creates path segment by segment. Segments that already exist,
// including ones created concurrently by another actor, count as success.
func (c *Client) EnsureDir(dir string) error {
	conn, err := c.connect()
	if err != nil {
		return err
	}
	defer conn.Quit()

	current := ""
	for _, segment := range strings.Split(strings.Trim(dir, "/"), "/") {
		if segment == "" {
			continue
		}
		current += "/" + segment
		if err := conn.MakeDir(current); err != nil {
			// Most servers answer 550 both for "exists" and for real
			// failures; a ChangeDir tells them apart.
			if cdErr := conn.ChangeDir(current); cdErr != nil {
				return fmt.Errorf("mkdir %s: %w", current, err)
			}
		}
	}
	return nil
}

// Upload stores the local file at remotePath, replacing any existing file.
func (c *Client) Upload(localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.UploadReader(f, remotePath)
}

func (c *Client) UploadReader(r io.Reader, remotePath string) error {
	conn, err := c.connect()
	if err != nil {
		return err
	}
	defer conn.Quit()

	if err := conn.Stor(remotePath, r); err != nil {
		return fmt.Errorf("stor %s: %w", remotePath, err)
	}
	return nil
}

// List returns the entry names directly under dir. An absent dir yields an
// empty list, not an error.
func (c *Client) List(dir string) ([]string, error) {
	conn, err := c.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	entries, err := conn.List(dir)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		names = append(names, e.Name)
	}
	return names, nil
}

func (c *Client) Exists(p string) (bool, error) {
	names, err := c.List(path.Dir(p))
	if err != nil {
		return false, err
	}
	base := path.Base(p)
	for _, name := range names {
		if name == base {
			return true, nil
		}
	}
	return false, nil
}

// Remove deletes the file at p. Already absent is success.
func (c *Client) Remove(p string) error {
	conn, err := c.connect()
	if err != nil {
		return err
	}
	defer conn.Quit()

	if err := conn.Delete(p); err != nil && !notFound(err) {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

// RemoveDirIfEmpty removes dir when it holds no entries and reports whether
// a removal happened. A non-empty or absent dir is left alone without error.
func (c *Client) RemoveDirIfEmpty(dir string) (bool, error) {
	names, err := c.List(dir)
	if err != nil {
		return false, err
	}
	if len(names) > 0 {
		return false, nil
	}

	conn, err := c.connect()
	if err != nil {
		return false, err
	}
	defer conn.Quit()

	if err := conn.RemoveDir(dir); err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("rmdir %s: %w", dir, err)
	}
	return true, nil
}

// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crawl

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	log "github.com/sirupsen/logrus"
)

// Remote is a remote file tree.
type Remote interface {
	// List returns the paths of the entries in the
	// remote directory dir.
	List(ctx context.Context, dir string) ([]string, error)
	// Fetch writes the content of the remote file at
	// path to w.
	Fetch(ctx context.Context, path string, w io.Writer) error
	// Close releases the connection to the remote.
	Close() error
}

// Default remote hosts.
const (
	GEOHost          = "ftp.ncbi.nih.gov"
	ArrayExpressHost = "ftp.ebi.ac.uk"
)

// FTP is a Remote served by an FTP server.
type FTP struct {
	conn *ftp.ServerConn
}

// DialFTP connects to the FTP server at addr and logs in anonymously,
// using email as the password. If addr has no port, port 21 is used.
func DialFTP(ctx context.Context, addr, email string) (*FTP, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "21")
	}
	log.Infof("connect to %s", addr)
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(time.Minute))
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", addr, err)
	}
	err = conn.Login("anonymous", email)
	if err != nil {
		conn.Quit()
		return nil, fmt.Errorf("could not login to %s: %w", addr, err)
	}
	return &FTP{conn: conn}, nil
}

// List returns the paths of the entries in dir. Servers differ in whether
// NLST returns bare names or full paths; List always returns full paths.
func (r *FTP) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, err := r.conn.NameList(dir)
	if err != nil {
		return nil, fmt.Errorf("could not list %s: %w", dir, err)
	}
	return joinNames(dir, names), nil
}

// Fetch writes the content of the remote file at p to w.
func (r *FTP) Fetch(ctx context.Context, p string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := r.conn.Retr(p)
	if err != nil {
		return fmt.Errorf("could not retrieve %s: %w", p, err)
	}
	_, err = io.Copy(w, resp)
	cerr := resp.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("could not retrieve %s: %w", p, err)
	}
	return nil
}

// Close logs out and closes the connection.
func (r *FTP) Close() error {
	return r.conn.Quit()
}

// HTTP is a Remote served by a web server. Directory listings are read
// from the links of the server's index pages.
type HTTP struct {
	// Base is the root URL of the tree.
	Base *url.URL
	// Client is the client used for requests. If
	// nil, http.DefaultClient is used.
	Client *http.Client
}

// NewHTTP returns an HTTP remote rooted at base.
func NewHTTP(base string) (*HTTP, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("not an http url: %s", base)
	}
	return &HTTP{Base: u}, nil
}

var href = regexp.MustCompile(`(?i)href="([^"?#]+)"`)

// List returns the paths of the entries linked from the index page of dir.
// Links leaving dir are ignored.
func (r *HTTP) List(ctx context.Context, dir string) ([]string, error) {
	var buf strings.Builder
	err := r.Fetch(ctx, strings.TrimSuffix(dir, "/")+"/", &buf)
	if err != nil {
		return nil, err
	}
	var names []string
	seen := make(map[string]bool)
	for _, m := range href.FindAllStringSubmatch(buf.String(), -1) {
		name := strings.TrimSuffix(m[1], "/")
		if strings.Contains(name, "://") || strings.HasPrefix(name, "/") || name == "" || name == ".." || name == "." {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return joinNames(dir, names), nil
}

// Fetch writes the content at the path p relative to the remote's base
// URL to w.
func (r *HTTP) Fetch(ctx context.Context, p string, w io.Writer) error {
	u := *r.Base
	u.Path = path.Join("/", u.Path, p)
	if strings.HasSuffix(p, "/") {
		u.Path += "/"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("could not retrieve %s: %w", u.String(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("could not retrieve %s: %s", u.String(), resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("could not retrieve %s: %w", u.String(), err)
	}
	return nil
}

// Close is a no-op.
func (r *HTTP) Close() error { return nil }

// Open returns a Remote for the host of rawurl and the path of rawurl on
// that host. FTP remotes log in with email.
func Open(ctx context.Context, rawurl, email string) (Remote, string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, "", err
	}
	switch u.Scheme {
	case "ftp":
		r, err := DialFTP(ctx, u.Host, email)
		if err != nil {
			return nil, "", err
		}
		return r, u.Path, nil
	case "http", "https":
		p := u.Path
		u.Path = ""
		return &HTTP{Base: u}, p, nil
	default:
		return nil, "", fmt.Errorf("unsupported url scheme: %q", u.Scheme)
	}
}

func joinNames(dir string, names []string) []string {
	paths := make([]string, 0, len(names))
	for _, n := range names {
		n = path.Base(n)
		if n == "." || n == ".." {
			continue
		}
		paths = append(paths, path.Join(dir, n))
	}
	sort.Strings(paths)
	return paths
}

// Package share hands a finished recording to another device: it serves
// the file over HTTP as a download and prints its URL as a terminal QR code.
package share

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/rosebloom/internal/capture"
	"github.com/ivlev/rosebloom/internal/video"
)

// Path is where the artifact is served.
const Path = "/" + capture.FileName

var ErrNoArtifact = errors.New("share: нет готовой записи")

// Source yields the artifact bytes on request.
type Source interface {
	Open() (io.ReadSeeker, time.Time, error)
}

// MediaSource serves the latest in-memory capture, e.g. Engine.Media of a
// running preview. Each request asks Latest again, so a new recording
// replaces the old one without restarting the server.
type MediaSource struct {
	Latest func() *capture.Media
}

func (s MediaSource) Open() (io.ReadSeeker, time.Time, error) {
	if s.Latest == nil {
		return nil, time.Time{}, ErrNoArtifact
	}
	m := s.Latest()
	if m == nil {
		return nil, time.Time{}, ErrNoArtifact
	}
	data, err := m.Bytes()
	if err != nil {
		return nil, time.Time{}, ErrNoArtifact
	}
	return bytes.NewReader(data), m.Created, nil
}

// FileSource serves a recording from disk, e.g. the latest export.
type FileSource struct {
	Path string
}

func (s FileSource) Open() (io.ReadSeeker, time.Time, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, time.Time{}, ErrNoArtifact
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, time.Time{}, err
	}
	return f, info.ModTime(), nil
}

// Handler serves the artifact at Path as an attachment named rose-bloom.webm.
func Handler(src Source) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+Path, func(w http.ResponseWriter, r *http.Request) {
		rs, modtime, err := src.Open()
		if errors.Is(err, ErrNoArtifact) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("[!] share: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if c, ok := rs.(io.Closer); ok {
			defer c.Close()
		}
		h := w.Header()
		h.Set("Content-Type", video.MIMEType)
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", capture.FileName))
		http.ServeContent(w, r, capture.FileName, modtime, rs)
	})
	return mux
}

// URL returns the download address for a listener bound to addr. An
// unspecified host is replaced by the first non-loopback IPv4 address.
func URL(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("адрес %q: %w", addr, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = outboundHost()
	}
	return "http://" + net.JoinHostPort(host, port) + Path, nil
}

func outboundHost() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, a := range addrs {
		if ipn, ok := a.(*net.IPNet); ok && !ipn.IP.IsLoopback() && ipn.IP.To4() != nil {
			return ipn.IP.String()
		}
	}
	return "localhost"
}

// QR renders url as a compact terminal QR code.
func QR(url string) (string, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("qr: %w", err)
	}
	return q.ToSmallString(false), nil
}

// Announce prints the download URL with a scannable code under it.
func Announce(w io.Writer, url string) {
	fmt.Fprintf(w, "[+++] Запись доступна: %s\n", url)
	code, err := QR(url)
	if err != nil {
		fmt.Fprintf(w, "[!] %v\n", err)
		return
	}
	fmt.Fprint(w, code)
}

// Serve listens on addr until the listener fails. The URL is announced
// once the socket is bound.
func Serve(addr string, src Source) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	}
	url, err := URL(ln.Addr().String())
	if err != nil {
		ln.Close()
		return err
	}
	Announce(os.Stdout, url)
	srv := &http.Server{Handler: Handler(src), ReadHeaderTimeout: 10 * time.Second}
	return srv.Serve(ln)
}

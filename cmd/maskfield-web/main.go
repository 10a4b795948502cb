// Command maskfield-web serves the maskfield demo page and its wasm build.
//
// Run "go generate" in this directory to build static/maskfield.wasm first.
package main

import (
	"crypto/md5"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	flagAddr    = flag.String("addr", ":8081", "Address to listen on")
	flagDir     = flag.StringP("dir", "d", "static", "Directory to serve")
	flagVerbose = flag.BoolP("verbose", "v", false, "Log every request")
)

// ETagFileServer is a file server that adds ETag support.
type ETagFileServer struct {
	root http.FileSystem
}

// NewETagFileServer creates a new file server with ETag support.
func NewETagFileServer(root http.FileSystem) *ETagFileServer {
	return &ETagFileServer{root}
}

// ServeHTTP implements the http.Handler interface.
func (s *ETagFileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upath := path.Clean("/" + r.URL.Path)

	f, err := s.root.Open(upath)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if fi.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		index, err := s.root.Open(path.Join(upath, "index.html"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer index.Close()
		if fi, err = index.Stat(); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		f = index
	}

	etag := generateETag(fi)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType(fi.Name(), f))
	w.Header().Set("Cache-Control", "public, max-age=0")
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

// contentType picks the type by extension, sniffing the content when the extension is unknown.
func contentType(name string, f http.File) string {
	switch path.Ext(name) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".wasm":
		// instantiateStreaming requires this exact type.
		return "application/wasm"
	}
	buf := make([]byte, 512)
	n, _ := io.ReadFull(f, buf)
	f.Seek(0, io.SeekStart)
	return http.DetectContentType(buf[:n])
}

// generateETag creates an ETag based on file size, modification time, and name.
func generateETag(fi fs.FileInfo) string {
	h := md5.New()
	fmt.Fprintf(h, "%s:%d:%d", fi.Name(), fi.Size(), fi.ModTime().UnixNano())
	return fmt.Sprintf(`"%x"`, h.Sum(nil))
}

// echoHandler answers a form post with the submitted fields, one name=value per line,
// so the demo shows what a masked form actually sends.
func echoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	keys := make([]string, 0, len(r.PostForm))
	for k := range r.PostForm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, k := range keys {
		for _, v := range r.PostForm[k] {
			fmt.Fprintf(w, "%s=%s\n", k, v)
		}
	}
}

func newMux(dir http.FileSystem, log *zap.SugaredLogger, verbose bool) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", NewETagFileServer(dir))
	mux.HandleFunc("/echo", echoHandler)
	if !verbose {
		return mux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Infow("request", "method", r.Method, "path", r.URL.Path)
		mux.ServeHTTP(w, r)
	})
}

func main() {
	flag.Parse()
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Sugar()
	defer log.Sync()

	log.Infow("starting maskfield-web", "addr", *flagAddr, "dir", *flagDir)
	if err := http.ListenAndServe(*flagAddr, newMux(http.Dir(*flagDir), log, *flagVerbose)); err != nil {
		log.Fatal(err)
	}
}

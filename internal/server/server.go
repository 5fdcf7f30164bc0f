// Package server hosts the invitation backend: the JSON document
// endpoints, multipart asset upload, static serving of uploaded files, and
// the asset listing/deletion surface the garbage collector relies on.
// See docs/ARCHITECTURE.md § Backend Server.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/linkwed/linkwed/internal/geocode"
	"github.com/linkwed/linkwed/pkg/types"
)

// Server hosts the LinkWed HTTP API.
type Server struct {
	config   Config
	assets   *DiskAssets
	snapshot *FileSnapshot
	geo      *geocode.Client
	mux      *http.ServeMux
	listener net.Listener
}

// uploadResponse mirrors the file as actually persisted; callers may
// verify via a follow-up request on URL.
type uploadResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
	Size int64  `json:"size"`
}

// invitationResponse is the GET /api/invitation body: the document plus a
// fresh-install marker.
type invitationResponse struct {
	*types.Invitation
	IsNew bool `json:"isNew,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// New creates a configured server listening on cfg.Port.
func New(cfg Config) (*Server, error) {
	assets, err := NewDiskAssets(cfg.UploadDir())
	if err != nil {
		return nil, err
	}
	snapshot, err := NewFileSnapshot(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}

	s := &Server{
		config:   cfg,
		assets:   assets,
		snapshot: snapshot,
		geo:      geocode.NewClient(cfg.AMAPKey),
		listener: listener,
	}
	s.routes()
	return s, nil
}

// NewHandler wires a server without a listener, for tests and embedding.
func NewHandler(cfg Config) (*Server, error) {
	assets, err := NewDiskAssets(cfg.UploadDir())
	if err != nil {
		return nil, err
	}
	snapshot, err := NewFileSnapshot(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	s := &Server{
		config:   cfg,
		assets:   assets,
		snapshot: snapshot,
		geo:      geocode.NewClient(cfg.AMAPKey),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/invitation", s.handleGetInvitation)
	mux.HandleFunc("POST /api/invitation", s.handleSaveInvitation)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/geocode", s.handleGeocode)
	mux.HandleFunc("GET /api/assets", s.handleListAssets)
	mux.HandleFunc("DELETE /api/assets/{id}", s.handleDeleteAsset)
	mux.HandleFunc("GET /uploads/{id}", s.handleServeAsset)
	mux.HandleFunc("HEAD /uploads/{id}", s.handleServeAsset)
	mux.Handle("GET /media/", http.StripPrefix("/media/",
		http.FileServer(http.Dir(s.config.MediaDir()))))
	mux.HandleFunc("/", s.handleSPA)
	s.mux = mux
}

// Handler returns the HTTP handler tree.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr returns the bound listen address, or nil when the server was
// created without a listener.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve blocks until the listener fails or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	srv := &http.Server{Handler: s.mux}
	log.Printf("invitation server listening at %v", s.listener.Addr())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-serveErr
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Run creates and serves a server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	s, err := New(cfg)
	if err != nil {
		return err
	}
	return s.Serve(ctx)
}

func (s *Server) handleGetInvitation(w http.ResponseWriter, r *http.Request) {
	inv, created, err := s.snapshot.Load(r.Context())
	if err != nil {
		log.Printf("load invitation: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "读取邀请数据失败"})
		return
	}
	writeJSON(w, http.StatusOK, invitationResponse{Invitation: inv, IsNew: created})
}

func (s *Server) handleSaveInvitation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "请求体读取失败"})
		return
	}
	inv, err := types.DecodeInvitation(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "邀请数据格式无效"})
		return
	}

	saved, err := s.snapshot.Save(r.Context(), inv)
	if err != nil {
		log.Printf("save invitation: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "保存失败"})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "上传内容无效"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "未接收到文件"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "文件读取失败"})
		return
	}

	id := r.FormValue("fileId")
	if id == "" {
		id = generateFileID(header.Filename)
	}
	if !validID(id) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "文件标识无效"})
		return
	}

	blob := types.Blob{
		Name:     header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	}
	if err := s.assets.Put(r.Context(), id, blob); err != nil {
		log.Printf("store upload %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "文件保存失败"})
		return
	}

	// Report what was actually persisted, not just what was received.
	stored, err := s.assets.Get(r.Context(), id)
	if err != nil {
		log.Printf("verify upload %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "文件保存失败"})
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		ID:   id,
		Name: header.Filename,
		URL:  "/uploads/" + id,
		Type: blob.MIMEType,
		Size: int64(len(stored.Data)),
	})
}

func (s *Server) handleServeAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	blob, err := s.assets.Get(r.Context(), id)
	if errors.Is(err, types.ErrAssetNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("serve asset %s: %v", id, err)
		http.Error(w, "asset read failed", http.StatusInternalServerError)
		return
	}
	if blob.MIMEType != "" {
		w.Header().Set("Content-Type", blob.MIMEType)
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(blob.Data)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write(blob.Data)
}

// placeResult is one venue candidate in the /api/geocode response.
type placeResult struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// handleGeocode proxies venue search to AMAP so the API key stays on the
// server.
func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	places, err := s.geo.Search(r.Context(), query)
	switch {
	case errors.Is(err, geocode.ErrNoAPIKey):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "未配置地图服务"})
		return
	case errors.Is(err, geocode.ErrNoResults):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "未找到相关地点"})
		return
	case err != nil:
		log.Printf("geocode %q: %v", query, err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: "地点搜索失败"})
		return
	}

	results := make([]placeResult, 0, len(places))
	for _, p := range places {
		results = append(results, placeResult{
			ID:      p.ID,
			Name:    p.Name,
			Address: p.Address,
			Lat:     p.Location.Lat,
			Lng:     p.Location.Lng,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]placeResult{"places": results})
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	ids, err := s.assets.ListIDs(r.Context())
	if err != nil {
		log.Printf("list assets: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "资源列表读取失败"})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.assets.Delete(r.Context(), id); err != nil {
		log.Printf("delete asset %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "资源删除失败"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSPA serves the built frontend, falling back to index.html for
// client-side routes.
func (s *Server) handleSPA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.config.DistDir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		http.ServeFile(w, r, path)
		return
	}

	index := filepath.Join(s.config.DistDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.Error(w, "Application not built yet. Run: npm run build", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, index)
}

// generateFileID builds an upload id from the current time plus a short
// random suffix, keeping the original extension so the MIME type survives.
func generateFileID(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

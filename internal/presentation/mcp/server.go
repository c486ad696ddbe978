package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"

	"jarindexer/internal/config"
	"jarindexer/internal/domain"
	"jarindexer/internal/explore"
	"jarindexer/internal/infrastructure/extractor"
	"jarindexer/internal/infrastructure/fetch"
	"jarindexer/internal/infrastructure/gitrepo"
	"jarindexer/internal/infrastructure/mavencache"
	"jarindexer/internal/infrastructure/storage"
)

type Server struct {
	cfg   *config.Config
	svc   *domain.Service
	cache *mavencache.Scanner

	sessionMu          sync.RWMutex
	initialized        bool
	clientCapabilities map[string]any

	enc     *json.Encoder
	writeMu sync.Mutex
}

// New wires the full stack over the configured base directory.
func New(cfg *config.Config) (*Server, error) {
	layout := storage.NewLayout(cfg.BaseDir)
	if err := layout.EnsureRoots(); err != nil {
		return nil, err
	}
	store := storage.NewStore(layout)

	dl := fetch.NewDownloader(cfg.DownloadRetries, cfg.DownloadTimeout)
	git := gitrepo.New(cfg.GitTimeout)

	strategies := map[domain.SourceKind]domain.Strategy{
		domain.SourceKindArchive:   extractor.NewArchiveStrategy(layout, dl, cfg.Mirrors),
		domain.SourceKindDirectory: extractor.NewDirectoryStrategy(layout),
		domain.SourceKindVCS:       extractor.NewVCSStrategy(layout, git),
	}

	svc := domain.NewService(
		extractor.NewClassifier(cfg.DefaultGitRef),
		strategies,
		store,
		explore.New(),
		cfg.LockWait,
	)

	return &Server{
		cfg:   cfg,
		svc:   svc,
		cache: mavencache.NewScanner(),
	}, nil
}

func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	s.enc = enc

	r := bufio.NewReader(in)
	reqCh := make(chan jsonRPCRequest, 16)
	errCh := make(chan error, 1)
	go s.readLoop(ctx, r, reqCh, errCh)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-reqCh:
			if !ok {
				// Input closed; every parsed request has been handled.
				return <-errCh
			}
			s.handleRequest(ctx, msg)
		}
	}
}

func (s *Server) readLoop(ctx context.Context, r *bufio.Reader, reqCh chan jsonRPCRequest, errCh chan<- error) {
	defer close(reqCh)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			errCh <- err
			return
		}

		if len(line) > 0 {
			line = bytesTrimNL(line)
			s.handleIncomingLine(ctx, line, reqCh)
		}

		if errors.Is(err, io.EOF) {
			errCh <- nil
			return
		}
	}
}

func (s *Server) handleIncomingLine(ctx context.Context, line []byte, reqCh chan<- jsonRPCRequest) {
	var msg jsonRPCRequest
	if err := json.Unmarshal(line, &msg); err != nil {
		log.Printf("event=incoming_unmarshal_failed error=%q", err.Error())
		return
	}
	if msg.Method == "" {
		// A response to a server-initiated request; this server sends none.
		return
	}

	select {
	case <-ctx.Done():
		return
	case reqCh <- msg:
	}
}

func (s *Server) handleRequest(ctx context.Context, msg jsonRPCRequest) {
	isNotification := len(msg.ID) == 0

	switch msg.Method {
	case "initialize":
		res, rpcErr := s.handleInitialize(msg.Params)
		if !isNotification {
			s.writeResponseAndLog(msg.Method, msg.ID, res, rpcErr)
		}
	case "notifications/initialized":
		s.setInitialized(true)
	case "ping":
		if !isNotification {
			s.writeResponseAndLog(msg.Method, msg.ID, map[string]any{}, nil)
		}
	case "tools/list":
		res, rpcErr := s.handleToolsList(msg.Params)
		if !isNotification {
			s.writeResponseAndLog(msg.Method, msg.ID, res, rpcErr)
		}
	case "tools/call":
		res, rpcErr := s.handleToolsCall(ctx, msg.Params)
		if !isNotification {
			s.writeResponseAndLog(msg.Method, msg.ID, res, rpcErr)
		}
	case "resources/list":
		res, rpcErr := s.handleResourcesList(ctx, msg.Params)
		if !isNotification {
			s.writeResponseAndLog(msg.Method, msg.ID, res, rpcErr)
		}
	case "resources/read":
		res, rpcErr := s.handleResourcesRead(ctx, msg.Params)
		if !isNotification {
			s.writeResponseAndLog(msg.Method, msg.ID, res, rpcErr)
		}
	case "resources/templates/list":
		res := map[string]any{"resourceTemplates": []map[string]any{{
			"uriTemplate": "jar://{group}/{artifact}/{version}",
			"name":        "artifact",
			"description": "Registration record and lifecycle state of one artifact",
			"mimeType":    "application/json",
		}}}
		if !isNotification {
			s.writeResponseAndLog(msg.Method, msg.ID, res, nil)
		}
	case "prompts/list":
		res := map[string]any{"prompts": []any{}}
		if !isNotification {
			s.writeResponseAndLog(msg.Method, msg.ID, res, nil)
		}
	default:
		if !isNotification {
			s.writeResponseAndLog(msg.Method, msg.ID, nil, &jsonRPCError{Code: -32601, Message: "Method not found"})
		}
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/viben"
	"github.com/aretw0/viben/internal/logging"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/ports"
)

const tutorialsURI = "viben://tutorials"

// Service is the pipeline surface exposed as MCP tools. *viben.Pipeline satisfies it.
type Service interface {
	Generate(ctx context.Context, recordID string, opts viben.GenerateOptions) (*viben.GenerateResult, error)
	Load(ctx context.Context, id string) (*domain.Tutorial, error)
	List(ctx context.Context) ([]domain.TutorialSummary, error)
	Records(ctx context.Context, q ports.RecordQuery) (*domain.RecordPage, error)
	Resume(ctx context.Context, id string, st playback.State, opts ...playback.Option) (*playback.Session, error)
}

var _ Service = (*viben.Pipeline)(nil)

// TutorialList is the list_tutorials result.
type TutorialList struct {
	Tutorials []domain.TutorialSummary `json:"tutorials" jsonschema_description:"Stored tutorials, newest first"`
}

// GenerateResult is the generate_tutorial result.
type GenerateResult struct {
	TutorialID string `json:"tutorial_id" jsonschema_description:"Id of the stored tutorial"`
	Title      string `json:"title"`
	Cards      int    `json:"cards" jsonschema_description:"Number of cards"`
	Reused     bool   `json:"reused" jsonschema_description:"True when an existing tutorial was returned"`
}

// RecordList is the list_records result.
type RecordList struct {
	Records []RecordItem `json:"records"`
	Offset  string       `json:"offset,omitempty" jsonschema_description:"Pass back to fetch the next page"`
}

// RecordItem is a source record without its transcript.
type RecordItem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Author     string   `json:"author,omitempty"`
	SourceURL  string   `json:"source_url,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

type getTutorialArgs struct {
	ID string `json:"id"`
}

type generateArgs struct {
	RecordID string `json:"record_id"`
	Force    bool   `json:"force"`
}

type listRecordsArgs struct {
	Offset string `json:"offset"`
	Tag    string `json:"tag"`
	Search string `json:"search"`
}

type playStepArgs struct {
	TutorialID string          `json:"tutorial_id"`
	State      *playback.State `json:"state"`
	Event      *playback.Event `json:"event"`
}

// Server exposes the pipeline over the Model Context Protocol.
type Server struct {
	svc       Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc Service, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("viben-mcp", strings.TrimSpace(viben.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_tutorials",
		mcp.WithDescription("List stored tutorials, newest first."),
		mcp.WithOutputSchema[TutorialList](),
	), mcp.NewStructuredToolHandler(s.handleListTutorials))

	s.mcpServer.AddTool(mcp.NewTool("get_tutorial",
		mcp.WithDescription("Get the full card sequence of a tutorial."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Tutorial id")),
	), s.handleGetTutorial)

	s.mcpServer.AddTool(mcp.NewTool("generate_tutorial",
		mcp.WithDescription("Generate a tutorial from a source record and store it. Existing tutorials for the record are reused unless force is set."),
		mcp.WithString("record_id", mcp.Required(), mcp.Description("Source record id")),
		mcp.WithBoolean("force", mcp.Description("Regenerate even if a tutorial exists")),
		mcp.WithOutputSchema[GenerateResult](),
	), mcp.NewStructuredToolHandler(s.handleGenerate))

	s.mcpServer.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List source records that tutorials can be generated from."),
		mcp.WithString("offset", mcp.Description("Page offset returned by a previous call")),
		mcp.WithString("tag", mcp.Description("Only records carrying this tag")),
		mcp.WithString("search", mcp.Description("Case-insensitive title search")),
		mcp.WithOutputSchema[RecordList](),
	), mcp.NewStructuredToolHandler(s.handleListRecords))

	s.mcpServer.AddTool(mcp.NewTool("play_step",
		mcp.WithDescription("Apply one playback event to a tutorial session and return the next state and card. Omit state to start at the first card; pass back the returned state on the next call."),
		mcp.WithString("tutorial_id", mcp.Required(), mcp.Description("Tutorial id")),
		mcp.WithObject("state", mcp.Description("State returned by the previous play_step call")),
		mcp.WithObject("event", mcp.Description(`Event such as {"type":"advance"}, {"type":"answer","option":1}, {"type":"choice","tag":"backend"}, {"type":"jump","index":3}`)),
		mcp.WithOutputSchema[playback.View](),
	), mcp.NewStructuredToolHandler(s.handlePlayStep))
}

func (s *Server) handleListTutorials(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (TutorialList, error) {
	list, err := s.svc.List(ctx)
	if err != nil {
		return TutorialList{}, fmt.Errorf("list failed: %w", err)
	}
	if list == nil {
		list = []domain.TutorialSummary{}
	}
	return TutorialList{Tutorials: list}, nil
}

func (s *Server) handleGetTutorial(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getTutorialArgs
	if err := request.BindArguments(&args); err != nil || args.ID == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	t, err := s.svc.Load(ctx, args.ID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGenerate(ctx context.Context, _ mcp.CallToolRequest, args generateArgs) (GenerateResult, error) {
	if args.RecordID == "" {
		return GenerateResult{}, errors.New("record_id is required")
	}
	res, err := s.svc.Generate(ctx, args.RecordID, viben.GenerateOptions{Force: args.Force})
	if err != nil {
		s.logger.Warn("MCP generate failed", "record_id", args.RecordID, "err", err)
		return GenerateResult{}, fmt.Errorf("generate failed: %w", err)
	}
	return GenerateResult{
		TutorialID: res.Tutorial.ID,
		Title:      res.Tutorial.Title,
		Cards:      len(res.Tutorial.Cards),
		Reused:     res.Reused,
	}, nil
}

func (s *Server) handleListRecords(ctx context.Context, _ mcp.CallToolRequest, args listRecordsArgs) (RecordList, error) {
	page, err := s.svc.Records(ctx, ports.RecordQuery{Offset: args.Offset, Tag: args.Tag, Search: args.Search})
	if err != nil {
		return RecordList{}, fmt.Errorf("list records failed: %w", err)
	}
	out := RecordList{Records: make([]RecordItem, 0, len(page.Records)), Offset: page.Offset}
	for _, rec := range page.Records {
		out.Records = append(out.Records, RecordItem{
			ID:         rec.ID,
			Title:      rec.DisplayTitle(),
			Author:     rec.Author,
			SourceURL:  rec.SourceURL,
			Tags:       rec.Tags,
			Difficulty: rec.DifficultyLevel,
		})
	}
	return out, nil
}

// handlePlayStep is stateless: hosts carry the state between calls. A
// pending choice advance is resolved right away since MCP clients have no timer.
func (s *Server) handlePlayStep(ctx context.Context, _ mcp.CallToolRequest, args playStepArgs) (playback.View, error) {
	if args.TutorialID == "" {
		return playback.View{}, errors.New("tutorial_id is required")
	}
	var st playback.State
	if args.State != nil {
		st = *args.State
	}
	sess, err := s.svc.Resume(ctx, args.TutorialID, st, playback.WithAutoAdvance(0))
	if err != nil {
		return playback.View{}, fmt.Errorf("play failed: %w", err)
	}

	var pending *playback.Pending
	if args.Event != nil {
		if pending, err = sess.Apply(*args.Event); err != nil {
			return playback.View{}, fmt.Errorf("event rejected: %w", err)
		}
	}
	if pending != nil {
		sess.Resolve(*pending)
		pending = nil
	}

	view, err := sess.View(pending)
	if err != nil {
		return playback.View{}, err
	}
	return *view, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(tutorialsURI, "Stored tutorials",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.svc.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tutorials: %w", err)
		}
		data, _ := json.Marshal(list)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      tutorialsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

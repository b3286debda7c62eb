package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"

	textcompare "github.com/baditaflorin/go_text_compare"
	logadapter "github.com/baditaflorin/go_text_compare/internal/adapters/logger"
	"github.com/baditaflorin/go_text_compare/internal/adapters/normalizer"
	"github.com/baditaflorin/go_text_compare/internal/config"
	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/core/report"
)

// Default configuration
const (
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means use GOMAXPROCS
)

var (
	// Comparison engine shared by all handlers
	engine *textcompare.Engine

	// Deduplicates concurrent identical compare requests
	compareGroup singleflight.Group

	// Per-request computation budget
	requestTimeout time.Duration

	// Logger instance
	logger l.Logger
)

// Request represents a text pair request
type Request struct {
	TextA string `json:"text1"`
	TextB string `json:"text2"`
}

// CompareRequest carries the optional per-request comparison knobs
type CompareRequest struct {
	Request
	Threshold      *float64 `json:"threshold,omitempty"`
	IncludeOpcodes bool     `json:"include_opcodes,omitempty"`
}

// ReportRequest optionally overrides the report length cap
type ReportRequest struct {
	Request
	MaxChars int `json:"max_chars,omitempty"`
}

// HighlightRequest selects which side of the pair to highlight
type HighlightRequest struct {
	Request
	Side string `json:"side,omitempty"`
}

// StatsRequest represents a text statistics request
type StatsRequest struct {
	Text string `json:"text"`
}

// CompareResponse represents a comparison response
type CompareResponse struct {
	Score         float64                `json:"score"`
	Passed        bool                   `json:"passed"`
	MatchingChars int                    `json:"matching_chars"`
	LengthA       int                    `json:"length_a"`
	LengthB       int                    `json:"length_b"`
	DiffCount     int                    `json:"diff_count"`
	Threshold     float64                `json:"threshold"`
	StatsA        StatsPayload           `json:"stats_a"`
	StatsB        StatsPayload           `json:"stats_b"`
	Delta         StatsPayload           `json:"delta"`
	Opcodes       []OpcodePayload        `json:"opcodes,omitempty"`
	Deduplicated  bool                   `json:"deduplicated,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
}

// StatsPayload carries line, word and character counts
type StatsPayload struct {
	Lines int `json:"lines"`
	Words int `json:"words"`
	Chars int `json:"chars"`
}

// OpcodePayload is one region of an alignment
type OpcodePayload struct {
	Tag    string `json:"tag"`
	AStart int    `json:"a_start"`
	AEnd   int    `json:"a_end"`
	BStart int    `json:"b_start"`
	BEnd   int    `json:"b_end"`
}

// BlockPayload is one matching block of an alignment
type BlockPayload struct {
	AStart int `json:"a_start"`
	BStart int `json:"b_start"`
	Size   int `json:"size"`
}

// AlignResponse represents an alignment response
type AlignResponse struct {
	Opcodes []OpcodePayload `json:"opcodes"`
	Blocks  []BlockPayload  `json:"blocks"`
}

// ReportResponse represents a rendered comparison report
type ReportResponse struct {
	Report     string  `json:"report"`
	Status     string  `json:"status"`
	Score      float64 `json:"score"`
	Compared   int     `json:"compared"`
	Mismatches int     `json:"mismatches"`
	DiffCount  int     `json:"diff_count"`
	Truncated  bool    `json:"truncated"`
}

// SpanPayload is one highlight span within a line
type SpanPayload struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  string `json:"kind"`
}

// LinePayload is one line with its highlight spans
type LinePayload struct {
	Start int           `json:"start"`
	Text  string        `json:"text"`
	Spans []SpanPayload `json:"spans"`
}

// HighlightResponse represents a highlight response
type HighlightResponse struct {
	Side  string        `json:"side"`
	Lines []LinePayload `json:"lines"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "TOML config file path")
	port := flag.Int("port", 0, "HTTP server port (overrides config addr)")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = GOMAXPROCS)")
	warmUp := flag.Bool("warm-up", true, "Perform system warm-up on startup")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	flag.Parse()

	// Load configuration
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	requestTimeout = cfg.Server.RequestTimeout.Duration

	addr := cfg.Server.Addr
	if *port != 0 {
		addr = fmt.Sprintf(":%d", *port)
	}

	// Set up logger
	logPath := *logFile
	if logPath == "" {
		logPath = cfg.Logging.File
	}
	var err error
	logger, err = createLogger(logPath, cfg.Logging.JSONFormat, cfg.Logging.AddSource)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting text compare HTTP server",
		"addr", addr,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
		"max_request_size", *maxRequestSize,
		"concurrency", *concurrency,
	)

	// Initialize the comparison engine
	initEngine(cfg, *warmUp)

	handler := requestHandler
	if cfg.Server.EnableCompression {
		handler = fasthttp.CompressHandlerBrotliLevel(handler,
			fasthttp.CompressBrotliDefaultCompression,
			fasthttp.CompressDefaultCompression,
		)
	}

	// Create HTTP server with fasthttp
	server := &fasthttp.Server{
		Handler:               handler,
		ReadTimeout:           *readTimeout,
		WriteTimeout:          *writeTimeout,
		MaxRequestBodySize:    *maxRequestSize,
		Concurrency:           *concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxConnsPerIP:         0, // unlimited
		MaxRequestsPerConn:    0, // unlimited
		MaxIdleWorkerDuration: 10 * time.Second,
		Logger:                nil, // we'll handle logging ourselves
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	// Start server
	logger.Info("Server listening", "address", addr)
	if err := server.ListenAndServe(addr); err != nil {
		logger.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	logger.Info("Server stopped")
}

// initEngine initializes the shared comparison engine from the config
func initEngine(cfg config.Config, warmUp bool) {
	norm, err := normalizer.ByName(cfg.Engine.Normalizer)
	if err != nil {
		logger.Error("Failed to resolve normalizer", "error", err)
		os.Exit(1)
	}

	opts := []textcompare.Option{
		textcompare.WithLogger(logger),
		textcompare.WithThreshold(cfg.Engine.Threshold),
		textcompare.WithPrecision(cfg.Engine.Precision),
		textcompare.WithMaxReportChars(cfg.Engine.MaxReportChars),
		textcompare.WithExactSizeLimit(cfg.Engine.ExactSizeLimit),
		textcompare.WithFallbackTimeout(cfg.Engine.FallbackTimeout.Duration),
		textcompare.WithAutoJunk(cfg.Engine.AutoJunk),
		textcompare.WithNormalizer(norm),
	}

	if warmUp {
		opts = append(opts, textcompare.WithWarmUp(true))
	}

	engine, err = textcompare.New(opts...)
	if err != nil {
		logger.Error("Failed to initialize comparison engine", "error", err)
		os.Exit(1)
	}

	logger.Info("Comparison engine initialized",
		"warm_up", warmUp,
		"normalizer", cfg.Engine.Normalizer,
		"cpus", runtime.NumCPU(),
	)
}

// requestHandler is the main fasthttp request handler
func requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()
	requestID := uuid.New().String()

	// Set common headers
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "TextCompareServer")
	ctx.Response.Header.Set("X-Request-ID", requestID)

	// Route based on path
	switch string(ctx.Path()) {
	case "/health":
		handleHealthCheck(ctx)
	case "/compare":
		handleCompare(ctx)
	case "/align":
		handleAlign(ctx)
	case "/report":
		handleReport(ctx)
	case "/highlight":
		handleHighlight(ctx)
	case "/stats":
		handleStats(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
	}

	// Log request
	duration := time.Since(startTime)
	logger.Info("Request processed",
		"request_id", requestID,
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", duration,
	)
}

// handleHealthCheck responds to health check requests
func handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	writeJSONResponse(ctx, response)
}

// handleCompare handles comparison requests. Concurrent requests for the
// same pair share one computation; a per-request threshold is applied to
// the shared score afterwards, so it never fragments the dedup key.
func handleCompare(ctx *fasthttp.RequestCtx) {
	var req CompareRequest
	if !parseBody(ctx, &req) {
		return
	}
	if req.Threshold != nil && (*req.Threshold < 0 || *req.Threshold > 1) {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Threshold must be between 0 and 1")
		return
	}

	v, err, shared := compareGroup.Do(pairKey(req.TextA, req.TextB), func() (interface{}, error) {
		c, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return engine.Compare(c, req.TextA, req.TextB), nil
	})
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		writeJSONError(ctx, "Comparison failed: "+err.Error())
		return
	}
	comp := v.(domain.Comparison)

	passed := comp.Result.Passed
	threshold := comp.Result.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
		passed = comp.Result.Score >= threshold
	}

	response := CompareResponse{
		Score:         comp.Result.Score,
		Passed:        passed,
		MatchingChars: comp.Result.MatchingChars,
		LengthA:       comp.Result.LengthA,
		LengthB:       comp.Result.LengthB,
		DiffCount:     comp.DiffCount,
		Threshold:     threshold,
		StatsA:        statsPayload(comp.Result.StatsA),
		StatsB:        statsPayload(comp.Result.StatsB),
		Delta:         statsPayload(comp.Result.Delta),
		Deduplicated:  shared,
		Details:       comp.Result.Details,
	}
	if req.IncludeOpcodes {
		response.Opcodes = opcodePayloads(comp.Opcodes)
	}

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, response)
}

// handleAlign handles alignment requests
func handleAlign(ctx *fasthttp.RequestCtx) {
	req, ok := parseRequest(ctx)
	if !ok {
		return
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	ops := engine.Align(c, req.TextA, req.TextB)

	response := AlignResponse{
		Opcodes: opcodePayloads(ops),
		Blocks:  blockPayloads(ops),
	}

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, response)
}

// handleReport handles report rendering requests
func handleReport(ctx *fasthttp.RequestCtx) {
	var req ReportRequest
	if !parseBody(ctx, &req) {
		return
	}
	if req.MaxChars < 0 {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "max_chars must not be negative")
		return
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var comp domain.Comparison
	var rep domain.Report
	if req.MaxChars > 0 {
		// Per-request length cap: render through a one-off reporter over
		// the same alignment.
		reporter, err := report.NewReporter(report.Config{MaxChars: req.MaxChars}, logadapter.FromExisting(logger))
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			writeJSONError(ctx, "Invalid max_chars: "+err.Error())
			return
		}
		comp = engine.Compare(c, req.TextA, req.TextB)
		rep = reporter.Report(engine.Normalize(req.TextA), engine.Normalize(req.TextB), comp.Opcodes)
	} else {
		comp, rep = engine.CompareAndReport(c, req.TextA, req.TextB)
	}

	response := ReportResponse{
		Report:     rep.Text,
		Status:     engine.StatusLine(comp),
		Score:      comp.Result.Score,
		Compared:   rep.Compared,
		Mismatches: rep.Mismatches,
		DiffCount:  rep.DiffCount,
		Truncated:  rep.Truncated,
	}

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, response)
}

// handleHighlight handles per-line highlight requests
func handleHighlight(ctx *fasthttp.RequestCtx) {
	var req HighlightRequest
	if !parseBody(ctx, &req) {
		return
	}

	side := domain.SideA
	text := req.TextA
	switch strings.ToLower(req.Side) {
	case "", "a":
	case "b":
		side = domain.SideB
		text = req.TextB
	default:
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, `Side must be "a" or "b"`)
		return
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	ops := engine.Align(c, req.TextA, req.TextB)
	lines := engine.HighlightAll(engine.Normalize(text), ops, side)

	response := HighlightResponse{
		Side:  strings.ToLower(side.String()),
		Lines: linePayloads(lines),
	}

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, response)
}

// handleStats handles text statistics requests
func handleStats(ctx *fasthttp.RequestCtx) {
	var req StatsRequest
	if !parseBody(ctx, &req) {
		return
	}

	stats := engine.Stats(req.Text)

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, statsPayload(stats))
}

// Helper functions

// parseBody decodes a POST body into dst, writing the error response on
// failure. Empty texts are valid input.
func parseBody(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	// Only accept POST requests
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return false
	}

	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return false
	}

	return true
}

// parseRequest reads a bare text pair request.
func parseRequest(ctx *fasthttp.RequestCtx) (Request, bool) {
	var req Request
	if !parseBody(ctx, &req) {
		return Request{}, false
	}
	return req, true
}

// pairKey hashes a text pair into a dedup key. The length prefix keeps
// ("ab","c") and ("a","bc") from colliding.
func pairKey(a, b string) string {
	h := xxhash.New()
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(a)))
	h.Write(lenBuf[:])
	io.WriteString(h, a)
	io.WriteString(h, b)
	return strconv.FormatUint(h.Sum64(), 16)
}

func statsPayload(s domain.Stats) StatsPayload {
	return StatsPayload{Lines: s.Lines, Words: s.Words, Chars: s.Chars}
}

func opcodePayloads(ops []domain.Opcode) []OpcodePayload {
	out := make([]OpcodePayload, 0, len(ops))
	for _, op := range ops {
		out = append(out, OpcodePayload{
			Tag:    strings.ToLower(op.Tag.String()),
			AStart: op.AStart,
			AEnd:   op.AEnd,
			BStart: op.BStart,
			BEnd:   op.BEnd,
		})
	}
	return out
}

func blockPayloads(ops []domain.Opcode) []BlockPayload {
	out := make([]BlockPayload, 0, len(ops))
	for _, op := range ops {
		if op.Tag == domain.TagEqual {
			out = append(out, BlockPayload{AStart: op.AStart, BStart: op.BStart, Size: op.AEnd - op.AStart})
		}
	}
	return out
}

func linePayloads(lines []domain.LineSpans) []LinePayload {
	out := make([]LinePayload, 0, len(lines))
	for _, ln := range lines {
		spans := make([]SpanPayload, 0, len(ln.Spans))
		for _, sp := range ln.Spans {
			spans = append(spans, SpanPayload{
				Start: sp.Start,
				End:   sp.End,
				Kind:  strings.ToLower(sp.Kind.String()),
			})
		}
		out = append(out, LinePayload{Start: ln.Line.Start, Text: ln.Line.Text, Spans: spans})
	}
	return out
}

// writeJSONResponse writes a JSON response to the context
func writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		logger.Error("Error marshaling JSON response", "error", err)
		writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	errResponse := ErrorResponse{
		Error: message,
	}

	response, err := json.Marshal(errResponse)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}

// createLogger creates and configures a logger
func createLogger(logFile string, jsonFormat, addSource bool) (l.Logger, error) {
	// Create a logger factory
	factory := l.NewStandardFactory()

	// Configure the logger
	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	// Create the logger
	logger, err := factory.CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  jsonFormat,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   addSource,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/capture"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/dispatch"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/version"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/vision"
)

// mcpServer wraps the MCP server around a shared app. The mutex serializes
// tool calls because screen capture and input injection share one desktop.
type mcpServer struct {
	app   *app
	appMu sync.Mutex
	mcp   *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
}

// newMCPServer creates and configures an MCP server with the automation tools.
// The translator boundary is optional: without credentials the elements tool
// reports an error while the local tools keep working.
func newMCPServer() (*mcpServer, error) {
	a, err := newAppWithTranslator()
	if err != nil {
		a, err = newApp()
		if err != nil {
			return nil, err
		}
	}

	s := &mcpServer{app: a}
	s.mcp = mcpserver.NewMCPServer(
		"llm-computeruse",
		version.Version,
	)
	s.registerTools()
	return s, nil
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	// screenshot
	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the screen (or a region) and return it as base64 PNG"),
			mcp.WithString("region", mcp.Description("Capture only \"x1,y1,x2,y2\"")),
			mcp.WithBoolean("save", mcp.Description("Also save a timestamped copy to the screenshot archive")),
		),
		s.handleScreenshot,
	)

	// elements
	s.mcp.AddTool(
		mcp.NewTool("elements",
			mcp.WithDescription("Capture the screen and enumerate clickable UI elements with bounding boxes via the vision model"),
			mcp.WithBoolean("extract", mcp.Description("Crop and store a template per element for later matching")),
			mcp.WithString("types", mcp.Description("Only include these element types (comma-separated)")),
			mcp.WithString("region", mcp.Description("Only include elements overlapping \"x1,y1,x2,y2\"")),
		),
		s.handleElements,
	)

	// locate
	s.mcp.AddTool(
		mcp.NewTool("locate",
			mcp.WithDescription("Re-locate stored templates on the live screen by template matching. Returns centers and confidences."),
			mcp.WithString("name", mcp.Description("Match a single template by element name")),
			mcp.WithNumber("confidence", mcp.Description("Confidence threshold in (0,1] (default from config)")),
		),
		s.handleLocate,
	)

	// templates
	s.mcp.AddTool(
		mcp.NewTool("templates",
			mcp.WithDescription("List stored element templates with storage keys and bounding boxes"),
		),
		s.handleTemplates,
	)

	// act
	s.mcp.AddTool(
		mcp.NewTool("act",
			mcp.WithDescription("Execute one action: click, double_click, right_click, drag, type, hotkey, scroll, or wait. Targets are stored element names (re-located on the live screen) or bounding boxes."),
			mcp.WithString("action", mcp.Description("Action kind"), mcp.Required()),
			mcp.WithString("target", mcp.Description("Stored element name to act on")),
			mcp.WithString("start_box", mcp.Description("Absolute box \"[x1,y1,x2,y2]\" instead of a named target")),
			mcp.WithString("end_target", mcp.Description("Drag destination element name")),
			mcp.WithString("end_box", mcp.Description("Drag destination box \"[x1,y1,x2,y2]\"")),
			mcp.WithString("content", mcp.Description("Text to type")),
			mcp.WithString("key", mcp.Description("Key combo, e.g. \"ctrl+c\"")),
			mcp.WithString("direction", mcp.Description("Scroll direction: up, down, left, right")),
			mcp.WithNumber("clicks", mcp.Description("Scroll clicks (default: 3)")),
			mcp.WithNumber("seconds", mcp.Description("Seconds to wait for the wait action")),
			mcp.WithNumber("confidence", mcp.Description("Confidence threshold for named targets")),
		),
		s.handleAct,
	)

	// similarity
	s.mcp.AddTool(
		mcp.NewTool("similarity",
			mcp.WithDescription("Compare two PNG files for near-equality; returns a score in [0,1]"),
			mcp.WithString("a", mcp.Description("First image path"), mcp.Required()),
			mcp.WithString("b", mcp.Description("Second image path"), mcp.Required()),
			mcp.WithBoolean("ncc", mcp.Description("Use the whole-frame NCC fallback metric")),
		),
		s.handleSimilarity,
	)
}

// toolYAML serializes a result struct to YAML for an MCP text response.
func toolYAML(v interface{}) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(b))
}

func (s *mcpServer) handleScreenshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	regionStr := stringParam(params, "region", "")
	save := boolParam(params, "save", false)

	s.appMu.Lock()
	defer s.appMu.Unlock()

	frame, err := s.captureFrame(regionStr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if save {
		if _, err := s.app.capturer.SaveTimestamped(frame); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	pngBytes, err := capture.PNGBytes(frame)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultImage("screenshot", base64.StdEncoding.EncodeToString(pngBytes), "image/png"), nil
}

func (s *mcpServer) handleElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	extract := boolParam(params, "extract", false)
	typesStr := stringParam(params, "types", "")
	regionStr := stringParam(params, "region", "")

	s.appMu.Lock()
	defer s.appMu.Unlock()

	if s.app.translator == nil {
		return mcp.NewToolResultError("vision model not configured: set GEMINI_API_KEY"), nil
	}

	frame, err := s.app.capturer.FullScreen()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pngBytes, err := capture.PNGBytes(frame)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	elements, err := s.app.translator.IdentifyElements(ctx, pngBytes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	elements = model.FilterElements(elements, typeSet(typesStr), parseRegion(regionStr))

	result := ElementsResult{OK: true, TS: time.Now().Unix(), Count: len(elements), Elements: elements}
	if result.Elements == nil {
		result.Elements = []model.Element{}
	}
	if extract {
		result.Extracted = len(s.app.store.Extract(frame, elements))
	}
	return toolYAML(result), nil
}

func (s *mcpServer) handleLocate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	name := stringParam(params, "name", "")
	confidence := confidenceFlag(floatParam(params, "confidence", 0))

	s.appMu.Lock()
	defer s.appMu.Unlock()

	live, err := s.app.capturer.FullScreen()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var matches []model.MatchResult
	if name != "" {
		res, err := s.app.locateTemplate(live, name, confidence)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		matches = append(matches, res)
	} else {
		for _, res := range s.app.matcher.MatchAll(live, s.app.store.All(), s.app.store, confidence) {
			matches = append(matches, res)
		}
		sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	}
	if matches == nil {
		matches = []model.MatchResult{}
	}
	return toolYAML(MatchOutput{OK: true, Action: "match", Total: len(matches), Matches: matches}), nil
}

func (s *mcpServer) handleTemplates(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.appMu.Lock()
	defer s.appMu.Unlock()

	all := s.app.store.All()
	templates := make([]model.Template, 0, len(all))
	for _, tpl := range all {
		templates = append(templates, tpl)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return toolYAML(TemplatesResult{OK: true, Dir: s.app.store.Dir(), Count: len(templates), Templates: templates}), nil
}

func (s *mcpServer) handleAct(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	kind, err := model.ParseActionKind(stringParam(params, "action", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	desc := model.ActionDescriptor{Kind: kind, Target: stringParam(params, "target", "")}
	desc.Params.EndTarget = stringParam(params, "end_target", "")
	desc.Params.Content = stringParam(params, "content", "")
	desc.Params.Direction = stringParam(params, "direction", "")
	desc.Params.Clicks = intParam(params, "clicks", 0)
	desc.Params.Seconds = intParam(params, "seconds", 0)
	if combo := stringParam(params, "key", ""); combo != "" {
		desc.Params.Keys = model.ParseKeyCombo(combo)
	}
	if boxStr := stringParam(params, "start_box", ""); boxStr != "" {
		box, err := model.ParseBoxString(boxStr)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		desc.Params.StartBox = &box
	}
	if boxStr := stringParam(params, "end_box", ""); boxStr != "" {
		box, err := model.ParseBoxString(boxStr)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		desc.Params.EndBox = &box
	}
	confidence := confidenceFlag(floatParam(params, "confidence", 0))

	s.appMu.Lock()
	defer s.appMu.Unlock()

	var resolve dispatch.Resolver
	if desc.Target != "" || desc.Params.EndTarget != "" {
		live, err := s.app.capturer.FullScreen()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		resolve = s.app.resolver(live, confidence)
	}
	if err := s.app.dispatcher.Execute(desc, resolve); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolYAML(ActionResult{OK: true, Action: string(kind), Target: desc.Target}), nil
}

func (s *mcpServer) handleSimilarity(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	pathA := stringParam(params, "a", "")
	pathB := stringParam(params, "b", "")
	useNCC := boolParam(params, "ncc", false)

	result, err := compareImages(pathA, pathB, useNCC)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolYAML(result), nil
}

// captureFrame captures the full screen or, when regionStr is set, the given
// "x1,y1,x2,y2" region.
func (s *mcpServer) captureFrame(regionStr string) (image.Image, error) {
	if regionStr == "" {
		frame, err := s.app.capturer.FullScreen()
		if err != nil {
			return nil, err
		}
		return frame, nil
	}
	box, err := model.ParseBoxString(regionStr)
	if err != nil {
		return nil, err
	}
	frame, err := s.app.capturer.Region(box.Rect())
	if err != nil {
		return nil, err
	}
	return frame, nil
}

// typeSet parses a comma-separated type filter into a set.
func typeSet(typesStr string) map[string]bool {
	types := make(map[string]bool)
	for _, t := range strings.Split(typesStr, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types[t] = true
		}
	}
	return types
}

// parseRegion parses an optional region filter, nil when unset or invalid.
func parseRegion(regionStr string) *model.Box {
	if regionStr == "" {
		return nil
	}
	box, err := model.ParseBoxString(regionStr)
	if err != nil {
		return nil
	}
	return &box
}

// compareImages loads two PNG files and scores their similarity.
func compareImages(pathA, pathB string, useNCC bool) (SimilarityResult, error) {
	a, err := capture.LoadPNG(pathA)
	if err != nil {
		return SimilarityResult{}, fmt.Errorf("load %s: %w", pathA, err)
	}
	b, err := capture.LoadPNG(pathB)
	if err != nil {
		return SimilarityResult{}, fmt.Errorf("load %s: %w", pathB, err)
	}
	result := SimilarityResult{OK: true, Metric: "ssim"}
	if useNCC {
		result.Metric = "ncc"
		result.Score = vision.SimilarityNCC(a, b)
	} else {
		result.Score = vision.Similarity(a, b)
	}
	return result, nil
}

// Param helpers for MCP tool arguments, mirroring the flag defaults.

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	if v, ok := params[key].(int); ok {
		return v
	}
	return def
}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	if v, ok := params[key].(float64); ok {
		return v
	}
	return def
}

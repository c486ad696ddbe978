package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jarindexer/internal/config"
	"jarindexer/internal/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.BaseDir = t.TempDir()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

// writeSourceDir lays out a small Java-ish source tree to register.
func writeSourceDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pkg := filepath.Join(dir, "com", "example")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "package com.example;\n\npublic class Greeter {\n    public String greet() {\n        return \"hello\";\n    }\n}\n"
	if err := os.WriteFile(filepath.Join(pkg, "Greeter.java"), []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return dir
}

func callTool(t *testing.T, s *Server, handler func(context.Context, json.RawMessage) (any, *jsonRPCError), args map[string]any) toolResult {
	t.Helper()
	resAny, rpcErr := handler(context.Background(), mustRawJSON(t, args))
	if rpcErr != nil {
		t.Fatalf("rpc error: %+v", rpcErr)
	}
	return resAny.(toolResult)
}

func coordArgs(extra map[string]any) map[string]any {
	args := map[string]any{
		"group_id":    "com.example",
		"artifact_id": "greeter",
		"version":     "1.0.0",
	}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func TestRegisterIndexAndBrowseDirectorySource(t *testing.T) {
	s := newTestServer(t)
	src := writeSourceDir(t)

	res := callTool(t, s, s.toolRegisterSource, coordArgs(map[string]any{
		"source_locator": src,
		"auto_index":     true,
	}))
	if res.IsError {
		t.Fatalf("register returned tool error: %+v", res)
	}
	out := res.StructuredContent.(map[string]any)
	if out["status"] != "indexed" {
		t.Fatalf("expected status indexed, got %v", out["status"])
	}
	if out["source_kind"] != domain.SourceKindDirectory {
		t.Fatalf("expected directory kind, got %v", out["source_kind"])
	}

	res = callTool(t, s, s.toolListFolderTree, coordArgs(map[string]any{"max_depth": 5}))
	if res.IsError {
		t.Fatalf("list_folder_tree returned tool error: %+v", res)
	}
	snap := res.StructuredContent.(domain.TreeSnapshot)
	if len(snap.Folders) != 1 || snap.Folders[0].Name != "com" {
		t.Fatalf("unexpected tree root: %+v", snap)
	}

	res = callTool(t, s, s.toolSearchFileNames, coordArgs(map[string]any{"pattern": "*.java"}))
	if res.IsError {
		t.Fatalf("search_file_names returned tool error: %+v", res)
	}
	names := res.StructuredContent.(map[string]any)
	matches := names["matches"].([]domain.FileMatch)
	if len(matches) != 1 || matches[0].Name != "Greeter.java" {
		t.Fatalf("unexpected name matches: %+v", matches)
	}

	res = callTool(t, s, s.toolSearchFileContent, coordArgs(map[string]any{"query": "greet"}))
	if res.IsError {
		t.Fatalf("search_file_content returned tool error: %+v", res)
	}
	contentOut := res.StructuredContent.(map[string]any)
	results := contentOut["results"].(map[string][]domain.SearchMatch)
	if len(results) != 1 {
		t.Fatalf("expected one matching file, got %+v", results)
	}

	res = callTool(t, s, s.toolGetFile, coordArgs(map[string]any{
		"path":       "com/example/Greeter.java",
		"start_line": 3,
		"end_line":   3,
	}))
	if res.IsError {
		t.Fatalf("get_file returned tool error: %+v", res)
	}
	fileOut := res.StructuredContent.(map[string]any)
	content := fileOut["content"].(domain.FileContent)
	if !strings.Contains(content.SourceCode, "public class Greeter") {
		t.Fatalf("unexpected file slice: %+v", content)
	}

	res = callTool(t, s, s.toolListArtifacts, map[string]any{})
	if res.IsError {
		t.Fatalf("list_artifacts returned tool error: %+v", res)
	}
	listOut := res.StructuredContent.(map[string]any)
	rows := listOut["artifacts"].([]map[string]any)
	if len(rows) != 1 || rows[0]["state"] != domain.StateIndexed {
		t.Fatalf("unexpected artifact listing: %+v", listOut)
	}
}

func TestBrowseBeforeIndexReturnsNotIndexed(t *testing.T) {
	s := newTestServer(t)
	src := writeSourceDir(t)

	res := callTool(t, s, s.toolRegisterSource, coordArgs(map[string]any{"source_locator": src}))
	if res.IsError {
		t.Fatalf("register returned tool error: %+v", res)
	}

	res = callTool(t, s, s.toolListFolderTree, coordArgs(nil))
	if !res.IsError {
		t.Fatalf("expected tool error before indexing")
	}
	errOut := res.StructuredContent.(map[string]any)
	if errOut["status"] != "not_indexed" {
		t.Fatalf("expected not_indexed status, got %v", errOut["status"])
	}
}

func TestToolsCallRejectsInvalidArguments(t *testing.T) {
	s := newTestServer(t)

	params := mustRawJSON(t, map[string]any{
		"name":      "register_source",
		"arguments": map[string]any{"group_id": "com.example"},
	})
	resAny, rpcErr := s.handleToolsCall(context.Background(), params)
	if rpcErr != nil {
		t.Fatalf("rpc error: %+v", rpcErr)
	}
	res := resAny.(toolResult)
	if !res.IsError {
		t.Fatalf("expected schema validation failure, got %+v", res)
	}
}

func TestToolsCallUnknownTool(t *testing.T) {
	s := newTestServer(t)

	params := mustRawJSON(t, map[string]any{"name": "no_such_tool"})
	resAny, rpcErr := s.handleToolsCall(context.Background(), params)
	if rpcErr != nil {
		t.Fatalf("rpc error: %+v", rpcErr)
	}
	if res := resAny.(toolResult); !res.IsError {
		t.Fatalf("expected unknown-tool error, got %+v", res)
	}
}

func TestSearchCachedArtifactRejectsUnsafeGroup(t *testing.T) {
	s := newTestServer(t)

	res := callTool(t, s, s.toolSearchCachedArtifact, map[string]any{
		"group_id":    "../../etc",
		"artifact_id": "passwd",
	})
	if !res.IsError {
		t.Fatalf("expected coordinate validation failure")
	}
}

func TestResourcesListAndRead(t *testing.T) {
	s := newTestServer(t)
	src := writeSourceDir(t)

	res := callTool(t, s, s.toolRegisterSource, coordArgs(map[string]any{"source_locator": src}))
	if res.IsError {
		t.Fatalf("register returned tool error: %+v", res)
	}

	listAny, rpcErr := s.handleResourcesList(context.Background(), nil)
	if rpcErr != nil {
		t.Fatalf("resources/list rpc error: %+v", rpcErr)
	}
	resources := listAny.(map[string]any)["resources"].([]map[string]any)
	if len(resources) != 1 || resources[0]["uri"] != "jar://com.example/greeter/1.0.0" {
		t.Fatalf("unexpected resources: %+v", resources)
	}

	readAny, rpcErr := s.handleResourcesRead(context.Background(), mustRawJSON(t, map[string]any{
		"uri": "jar://com.example/greeter/1.0.0",
	}))
	if rpcErr != nil {
		t.Fatalf("resources/read rpc error: %+v", rpcErr)
	}
	contents := readAny.(map[string]any)["contents"].([]map[string]any)
	if len(contents) != 1 {
		t.Fatalf("expected one content block, got %+v", contents)
	}
	var detail map[string]any
	if err := json.Unmarshal([]byte(contents[0]["text"].(string)), &detail); err != nil {
		t.Fatalf("resource text is not json: %v", err)
	}
	if detail["state"] != "registered" {
		t.Fatalf("expected registered state, got %v", detail["state"])
	}

	missAny, rpcErr := s.handleResourcesRead(context.Background(), mustRawJSON(t, map[string]any{
		"uri": "jar://org.unknown/nothing/9.9.9",
	}))
	if rpcErr != nil {
		t.Fatalf("resources/read rpc error for miss: %+v", rpcErr)
	}
	missContents := missAny.(map[string]any)["contents"].([]map[string]any)
	if !strings.HasPrefix(missContents[0]["text"].(string), "error:") {
		t.Fatalf("expected error content for missing coordinate, got %+v", missContents)
	}
}

func TestServeHandshakeOverPipes(t *testing.T) {
	s := newTestServer(t)

	var in bytes.Buffer
	for _, msg := range []map[string]any{
		{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": map[string]any{"protocolVersion": ProtocolVersion}},
		{"jsonrpc": "2.0", "method": "notifications/initialized"},
		{"jsonrpc": "2.0", "id": 2, "method": "tools/list"},
		{"jsonrpc": "2.0", "id": 3, "method": "ping"},
	} {
		b, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		in.Write(b)
		in.WriteByte('\n')
	}

	var out bytes.Buffer
	if err := s.Serve(context.Background(), &in, &out); err != nil {
		t.Fatalf("serve: %v", err)
	}

	dec := json.NewDecoder(&out)
	var responses []jsonRPCResponse
	for dec.More() {
		var resp jsonRPCResponse
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		responses = append(responses, resp)
	}
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}

	var initRes map[string]any
	if err := json.Unmarshal(responses[0].Result, &initRes); err != nil {
		t.Fatalf("unmarshal initialize result: %v", err)
	}
	if initRes["protocolVersion"] != ProtocolVersion {
		t.Fatalf("unexpected protocol version: %v", initRes["protocolVersion"])
	}

	var toolsRes struct {
		Tools []toolDef `json:"tools"`
	}
	if err := json.Unmarshal(responses[1].Result, &toolsRes); err != nil {
		t.Fatalf("unmarshal tools result: %v", err)
	}
	if len(toolsRes.Tools) != 8 {
		t.Fatalf("expected 8 tools, got %d", len(toolsRes.Tools))
	}
}

func mustRawJSON(t *testing.T, value any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	return b
}

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolResult struct {
	Content           []any `json:"content"`
	StructuredContent any   `json:"structuredContent,omitempty"`
	IsError           bool  `json:"isError,omitempty"`
}

type toolHandlerFunc func(*Server, context.Context, json.RawMessage) (any, *jsonRPCError)

type toolRegistryEntry struct {
	Def     toolDef
	Schema  *jsonschema.Schema
	Handler toolHandlerFunc
}

var (
	toolRegistryOnce sync.Once
	toolRegistryByID map[string]toolRegistryEntry
)

func initializeToolRegistry() {
	handlers := map[string]toolHandlerFunc{
		toolRegisterSource: func(s *Server, ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
			return s.toolRegisterSource(ctx, args)
		},
		toolIndexArtifact: func(s *Server, ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
			return s.toolIndexArtifact(ctx, args)
		},
		toolListArtifacts: func(s *Server, ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
			return s.toolListArtifacts(ctx, args)
		},
		toolListFolderTree: func(s *Server, ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
			return s.toolListFolderTree(ctx, args)
		},
		toolSearchFileNames: func(s *Server, ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
			return s.toolSearchFileNames(ctx, args)
		},
		toolSearchFileContent: func(s *Server, ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
			return s.toolSearchFileContent(ctx, args)
		},
		toolGetFile: func(s *Server, ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
			return s.toolGetFile(ctx, args)
		},
		toolSearchCachedArtifact: func(s *Server, ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
			return s.toolSearchCachedArtifact(ctx, args)
		},
	}

	toolRegistryByID = make(map[string]toolRegistryEntry, len(handlers))
	for _, def := range toolDefinitions() {
		handler, ok := handlers[def.Name]
		if !ok {
			panic(fmt.Sprintf("tool %q has no handler", def.Name))
		}
		schema, err := compileToolSchema(def)
		if err != nil {
			panic(fmt.Sprintf("tool %q schema: %v", def.Name, err))
		}
		toolRegistryByID[def.Name] = toolRegistryEntry{Def: def, Schema: schema, Handler: handler}
	}
}

// compileToolSchema turns a declared input schema into a compiled validator,
// so malformed tool arguments are rejected before any handler runs.
func compileToolSchema(def toolDef) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(def.InputSchema)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	resource := def.Name + ".schema.json"
	if err := compiler.AddResource(resource, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(resource)
}

func lookupToolRegistryEntry(name string) (toolRegistryEntry, bool) {
	toolRegistryOnce.Do(initializeToolRegistry)
	entry, ok := toolRegistryByID[name]
	return entry, ok
}

func (s *Server) handleToolsList(_ json.RawMessage) (any, *jsonRPCError) {
	return map[string]any{"tools": toolDefinitions()}, nil
}

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, *jsonRPCError) {
	if !s.isInitialized() {
		// Tolerated: some clients call tools before notifications/initialized.
		log.Printf("event=tools_call_before_initialized")
	}

	var p callToolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return toolError("invalid params"), nil
	}

	entry, ok := lookupToolRegistryEntry(p.Name)
	if !ok {
		return toolError(fmt.Sprintf("unknown tool: %s", p.Name)), nil
	}

	if err := validateToolArgs(entry.Schema, p.Arguments); err != nil {
		return toolError("invalid arguments: " + err.Error()), nil
	}

	return entry.Handler(s, ctx, p.Arguments)
}

func validateToolArgs(schema *jsonschema.Schema, args json.RawMessage) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(args))
	if err != nil {
		return err
	}
	return schema.Validate(instance)
}

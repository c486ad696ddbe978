package mcp

const ProtocolVersion = "2025-11-25"

const (
	serverName         = "jar_indexer"
	serverTitle        = "Jar Source Indexer"
	serverVersion      = "0.1.0"
	serverDescription  = "Local MCP server that registers, indexes, browses, and searches the sources of Java/Kotlin library releases identified by Maven coordinates."
	serverInstructions = "Use register_source to attach a sources jar, source directory, or git repository to a (group_id, artifact_id, version) coordinate, then index_artifact to make it browsable. " +
		"list_folder_tree, search_file_names, search_file_content, and get_file work on indexed artifacts. " +
		"list_artifacts shows everything in the store; search_cached_artifact finds sources jars already present in the local Maven/Gradle caches."
)

const (
	toolRegisterSource       = "register_source"
	toolIndexArtifact        = "index_artifact"
	toolListArtifacts        = "list_artifacts"
	toolListFolderTree       = "list_folder_tree"
	toolSearchFileNames      = "search_file_names"
	toolSearchFileContent    = "search_file_content"
	toolGetFile              = "get_file"
	toolSearchCachedArtifact = "search_cached_artifact"
)

type toolDef struct {
	Name         string         `json:"name"`
	Title        string         `json:"title,omitempty"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"inputSchema"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
	Annotations  map[string]any `json:"annotations,omitempty"`
}

func initializeResponse() map[string]any {
	return map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{
				"listChanged": false,
			},
			"resources": map[string]any{
				"subscribe":   false,
				"listChanged": false,
			},
		},
		"serverInfo": map[string]any{
			"name":        serverName,
			"title":       serverTitle,
			"version":     serverVersion,
			"description": serverDescription,
		},
		"instructions": serverInstructions,
	}
}

func coordinateProps() map[string]any {
	return map[string]any{
		"group_id":    stringProp("Maven group ID, e.g. org.springframework."),
		"artifact_id": stringProp("Maven artifact ID, e.g. spring-core."),
		"version":     stringProp("Artifact version, e.g. 5.3.21."),
	}
}

func withCoordinate(extra map[string]any) map[string]any {
	props := coordinateProps()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

func toolDefinitions() []toolDef {
	return []toolDef{
		{
			Name:        toolRegisterSource,
			Title:       "Register artifact source",
			Description: "Register a source location (sources jar path or URL, local source directory, or git repository) for a coordinate. Set auto_index to also index it immediately.",
			InputSchema: objectSchema(
				withCoordinate(map[string]any{
					"source_locator": stringProp("Path or URL of the sources: a *-sources.jar file, a directory, an http(s) jar URL, or a git URL (https://..., git@..., ssh://...)."),
					"git_ref":        stringProp("Git tag, branch, or commit to index. Only meaningful for git sources; defaults to the repository's default branch."),
					"auto_index":     boolProp("Index the artifact right after registration."),
				}),
				"group_id", "artifact_id", "version", "source_locator",
			),
			Annotations: readOnlyHint(false),
		},
		{
			Name:        toolIndexArtifact,
			Title:       "Index artifact",
			Description: "Materialize the registered source of a coordinate into a searchable file tree. Idempotent: already-indexed artifacts return immediately.",
			InputSchema: objectSchema(
				coordinateProps(),
				"group_id", "artifact_id", "version",
			),
			Annotations: readOnlyHint(false),
		},
		{
			Name:        toolListArtifacts,
			Title:       "List artifacts",
			Description: "List every artifact known to the store with its lifecycle state. group_id and artifact_id act as prefix filters; version matches exactly.",
			InputSchema: objectSchema(
				map[string]any{
					"group_id":    stringProp("Optional group ID prefix filter."),
					"artifact_id": stringProp("Optional artifact ID prefix filter."),
					"version":     stringProp("Optional exact version filter."),
					"offset":      intProp("Pagination offset (default 0)."),
					"limit":       intProp("Max results (default 50)."),
				},
			),
			Annotations: readOnlyHint(true),
		},
		{
			Name:        toolListFolderTree,
			Title:       "List folder tree",
			Description: "List the directory tree of an indexed artifact. max_depth 0 shows only the immediate children of path.",
			InputSchema: objectSchema(
				withCoordinate(map[string]any{
					"path":          stringProp("Relative path inside the source tree to start from (default: the root)."),
					"max_depth":     intProp("How many folder levels to expand below the start (default 0: immediate children only)."),
					"include_files": boolProp("Include per-file details (default true)."),
				}),
				"group_id", "artifact_id", "version",
			),
			Annotations: readOnlyHint(true),
		},
		{
			Name:        toolSearchFileNames,
			Title:       "Search file names",
			Description: "Find files by name. pattern is a glob (* and ? wildcards) unless pattern_type is regex.",
			InputSchema: objectSchema(
				withCoordinate(map[string]any{
					"pattern":      stringProp("Name pattern, e.g. *Test.java."),
					"pattern_type": enumProp("How to interpret the pattern.", "glob", "regex"),
					"path":         stringProp("Relative path to search under (default: the root)."),
					"max_depth":    intProp("Directory depth limit (default: unlimited)."),
				}),
				"group_id", "artifact_id", "version", "pattern",
			),
			Annotations: readOnlyHint(true),
		},
		{
			Name:        toolSearchFileContent,
			Title:       "Search file content",
			Description: "Search file contents for a string or regex. Returns per-file context windows with line numbers; nearby matches merge into one window.",
			InputSchema: objectSchema(
				withCoordinate(map[string]any{
					"query":          stringProp("Text or regex to search for."),
					"query_type":     enumProp("How to interpret the query.", "string", "regex"),
					"path":           stringProp("Relative path to search under (default: the root)."),
					"max_depth":      intProp("Directory depth limit (default: unlimited)."),
					"context_before": intProp("Context lines before each match (default 2)."),
					"context_after":  intProp("Context lines after each match (default 2)."),
					"max_results":    intProp("Cap on total matching lines (default 100)."),
				}),
				"group_id", "artifact_id", "version", "query",
			),
			Annotations: readOnlyHint(true),
		},
		{
			Name:        toolGetFile,
			Title:       "Get file content",
			Description: "Read a file from an indexed artifact, optionally restricted to a line range. end_line clamps to the end of the file.",
			InputSchema: objectSchema(
				withCoordinate(map[string]any{
					"path":       stringProp("Relative path of the file inside the source tree."),
					"start_line": intProp("First line to return, 1-based (default 1)."),
					"end_line":   intProp("Last line to return, inclusive (default: end of file)."),
				}),
				"group_id", "artifact_id", "version", "path",
			),
			Annotations: readOnlyHint(true),
		},
		{
			Name:        toolSearchCachedArtifact,
			Title:       "Search local build caches",
			Description: "Look for already-downloaded *-sources.jar files in the local Maven (~/.m2) and Gradle (~/.gradle) caches. Hits can be registered directly as archive sources.",
			InputSchema: objectSchema(
				map[string]any{
					"group_id":    stringProp("Maven group ID."),
					"artifact_id": stringProp("Maven artifact ID."),
					"version":     stringProp("Optional exact version; all cached versions when omitted."),
					"cache_types": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string", "enum": []string{"maven", "gradle"}},
						"description": "Caches to scan (default: both).",
					},
				},
				"group_id", "artifact_id",
			),
			Annotations: readOnlyHint(true),
		},
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
	}
	if len(properties) > 0 {
		schema["properties"] = properties
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	prop := map[string]any{"type": "string"}
	if description != "" {
		prop["description"] = description
	}
	return prop
}

func intProp(description string) map[string]any {
	prop := map[string]any{"type": "integer"}
	if description != "" {
		prop["description"] = description
	}
	return prop
}

func boolProp(description string) map[string]any {
	prop := map[string]any{"type": "boolean"}
	if description != "" {
		prop["description"] = description
	}
	return prop
}

func enumProp(description string, values ...string) map[string]any {
	return map[string]any{
		"type":        "string",
		"enum":        values,
		"description": description,
	}
}

func readOnlyHint(readOnly bool) map[string]any {
	return map[string]any{"readOnlyHint": readOnly}
}

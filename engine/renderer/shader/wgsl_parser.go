package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
)

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// computeEntryRegex matches @compute functions and captures the entry point name
	computeEntryRegex = regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`)

	// workgroupSizeRegex captures 1-3 integer dimensions from @workgroup_size(x[, y[, z]])
	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*(?:,\s*(\d+)\s*)?)?\)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> camera: CameraUniform;
	// or handle types: @group(2) @binding(0) var diffuseTexture: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// Declaration is a single @group/@binding resource declared by a shader.
type Declaration struct {
	Group   uint32
	Binding uint32
	Name    string
	Type    string
	Kind    bind_group.Kind
}

// EntryPoints holds the entry point function names found in a shader. Missing stages are empty.
type EntryPoints struct {
	Vertex   string
	Fragment string
	Compute  string
}

// parseEntryPoints extracts the vertex, fragment and compute entry point names from WGSL source.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - EntryPoints: the entry point names, empty for stages the source does not declare
func parseEntryPoints(source string) EntryPoints {
	cleaned := stripComments(source)
	find := func(re *regexp.Regexp) string {
		if match := re.FindStringSubmatch(cleaned); match != nil {
			return match[1]
		}
		return ""
	}
	return EntryPoints{
		Vertex:   find(vertexEntryRegex),
		Fragment: find(fragmentEntryRegex),
		Compute:  find(computeEntryRegex),
	}
}

// parseWorkgroupSize extracts the @workgroup_size(x, y, z) dimensions from WGSL source.
// Omitted dimensions default to 1 as in WGSL.
// Returns [1, 1, 1] if no @workgroup_size annotation is found.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - [3]uint32: the workgroup size as [x, y, z]
func parseWorkgroupSize(source string) [3]uint32 {
	cleaned := stripComments(source)
	result := [3]uint32{1, 1, 1}

	match := workgroupSizeRegex.FindStringSubmatch(cleaned)
	if match == nil {
		return result
	}

	for i := range 3 {
		if match[i+1] == "" {
			continue
		}
		if v, err := strconv.ParseUint(match[i+1], 10, 32); err == nil {
			result[i] = uint32(v)
		}
	}

	return result
}

// parseDeclarations extracts all @group(N) @binding(M) resource declarations from WGSL source,
// sorted by group and then binding.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []Declaration: the declared resources
func parseDeclarations(source string) []Declaration {
	cleaned := stripComments(source)
	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)

	decls := make([]Declaration, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.ParseUint(match[1], 10, 32)
		binding, _ := strconv.ParseUint(match[2], 10, 32)
		addressSpace := strings.TrimSpace(match[3])
		typeName := strings.TrimSpace(match[5])

		decls = append(decls, Declaration{
			Group:   uint32(group),
			Binding: uint32(binding),
			Name:    strings.TrimSpace(match[4]),
			Type:    typeName,
			Kind:    classifyResource(addressSpace, typeName),
		})
	}

	sort.Slice(decls, func(i, j int) bool {
		if decls[i].Group != decls[j].Group {
			return decls[i].Group < decls[j].Group
		}
		return decls[i].Binding < decls[j].Binding
	})
	return decls
}

// classifyResource maps a declaration's address space and type onto the binding kind that can fill it.
// Storage buffers without read_write access are read-only and are filled by StorageAsUniform bindings.
func classifyResource(addressSpace, typeName string) bind_group.Kind {
	if addressSpace != "" {
		parts := strings.Split(addressSpace, ",")
		switch strings.TrimSpace(parts[0]) {
		case "uniform":
			return bind_group.KindUniform
		case "storage":
			if len(parts) > 1 && strings.TrimSpace(parts[1]) == "read_write" {
				return bind_group.KindStorage
			}
			return bind_group.KindStorageAsUniform
		}
	}

	base, _, _ := strings.Cut(typeName, "<")
	base = strings.TrimSpace(base)
	switch {
	case base == "sampler" || base == "sampler_comparison":
		return bind_group.KindSampler
	case strings.HasPrefix(base, "texture_storage_"):
		return bind_group.KindStorageTexture
	case base == "texture_3d":
		return bind_group.KindTexture3D
	default:
		return bind_group.KindTexture
	}
}

// stripComments removes both line and block comments from WGSL source.
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source with all comments removed
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

// stripLineComments removes single-line // comments from WGSL source.
func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes block comments (/* ... */) from WGSL source,
// handling nested block comments as WGSL allows.
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	i := 0
	for i < len(source) {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i += 2
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}

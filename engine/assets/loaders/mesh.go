package loaders

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

type MeshLoader struct{}

/**
 * @brief Parses a Wavefront OBJ file into mesh configurations. Each
 * object (o) becomes its own config; within an object, every usemtl run
 * becomes a subset addressing a contiguous index range. Faces with more
 * than three corners are fan-triangulated.
 */
func (ml *MeshLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	baseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	configs, err := parseObjFile(file, baseName)
	if err != nil {
		return nil, fmt.Errorf("mesh file %s: %w", path, err)
	}

	return &metadata.Resource{
		Name:     baseName,
		FullPath: path,
		DataSize: uint64(len(configs)),
		Data:     configs,
	}, nil
}

func (ml *MeshLoader) Unload(resource *metadata.Resource) error {
	if resource != nil {
		resource.Data = nil
		resource.DataSize = 0
	}
	return nil
}

// objBuilder accumulates one mesh config worth of geometry.
type objBuilder struct {
	name string

	vertices []math.Vertex3D
	indices  []uint32
	// Deduplicates v/vt/vn index triples.
	corners map[[3]int]uint32

	hasNormals   bool
	hasTexcoords bool

	subsets  []metadata.SubsetConfig
	subsetAt int
	// Material name per subset, index-aligned.
	materials []string
}

func newObjBuilder(name string) *objBuilder {
	return &objBuilder{
		name:     name,
		corners:  make(map[[3]int]uint32),
		subsetAt: -1,
	}
}

/** @brief Opens a new subset for the given material, closing the current one. */
func (b *objBuilder) beginSubset(materialName string) {
	b.closeSubset()
	b.subsets = append(b.subsets, metadata.SubsetConfig{
		Name:        fmt.Sprintf("%s.%d", b.name, len(b.subsets)),
		IndexOffset: uint32(len(b.indices)),
	})
	b.materials = append(b.materials, materialName)
	b.subsetAt = len(b.subsets) - 1
}

func (b *objBuilder) closeSubset() {
	if b.subsetAt < 0 {
		return
	}
	subset := &b.subsets[b.subsetAt]
	subset.IndexCount = uint32(len(b.indices)) - subset.IndexOffset

	bounds := math.NewExtents3DEmpty()
	for _, index := range b.indices[subset.IndexOffset:] {
		bounds = bounds.Include(b.vertices[index].Position)
	}
	subset.MinExtents = bounds.Min
	subset.MaxExtents = bounds.Max
	b.subsetAt = -1
}

/** @brief Discards subsets that ended up with no indices. */
func (b *objBuilder) prune() {
	kept := b.subsets[:0]
	materials := b.materials[:0]
	for i := range b.subsets {
		if b.subsets[i].IndexCount > 0 {
			kept = append(kept, b.subsets[i])
			materials = append(materials, b.materials[i])
		}
	}
	b.subsets = kept
	b.materials = materials
}

func (b *objBuilder) build() *metadata.MeshConfig {
	b.closeSubset()
	b.prune()
	if len(b.vertices) == 0 {
		return nil
	}

	attributes := metadata.VertexAttributePosition
	if !b.hasNormals {
		// OBJ files may omit vn lines entirely; flat face normals keep
		// the mesh lightable.
		math.GenerateFaceNormals(b.vertices, b.indices)
	}
	attributes |= metadata.VertexAttributeNormal
	if b.hasTexcoords {
		attributes |= metadata.VertexAttributeTexCoord0
	}

	return &metadata.MeshConfig{
		Name:          b.name,
		Vertices:      b.vertices,
		Indices:       b.indices,
		Attributes:    attributes,
		Subsets:       b.subsets,
		MaterialNames: b.materials,
	}
}

func parseObjFile(file *os.File, baseName string) ([]*metadata.MeshConfig, error) {
	var positions []math.Vec3
	var texcoords []math.Vec2
	var normals []math.Vec3

	var configs []*metadata.MeshConfig
	builder := newObjBuilder(baseName)

	flush := func() {
		if config := builder.build(); config != nil {
			configs = append(configs, config)
		}
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		keyword, args := fields[0], fields[1:]

		switch keyword {
		case "v":
			p, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, p)
		case "vt":
			if len(args) < 2 {
				return nil, fmt.Errorf("line %d: vt needs two components", lineNo)
			}
			u, err0 := parseFloat(args[0])
			v, err1 := parseFloat(args[1])
			if err0 != nil || err1 != nil {
				return nil, fmt.Errorf("line %d: invalid texcoord", lineNo)
			}
			texcoords = append(texcoords, math.NewVec2(u, v))
		case "vn":
			n, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, n)
		case "o":
			flush()
			name := baseName
			if len(args) > 0 {
				name = args[0]
			}
			builder = newObjBuilder(name)
		case "usemtl":
			material := ""
			if len(args) > 0 {
				material = args[0]
			}
			builder.beginSubset(material)
		case "f":
			if len(args) < 3 {
				return nil, fmt.Errorf("line %d: face needs at least three corners", lineNo)
			}
			if builder.subsetAt < 0 {
				builder.beginSubset("")
			}
			cornerIDs := make([]uint32, len(args))
			for i, corner := range args {
				id, err := builder.resolveCorner(corner, positions, texcoords, normals)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				cornerIDs[i] = id
			}
			for i := 2; i < len(cornerIDs); i++ {
				builder.indices = append(builder.indices, cornerIDs[0], cornerIDs[i-1], cornerIDs[i])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	flush()
	if len(configs) == 0 {
		return nil, fmt.Errorf("no geometry found")
	}
	return configs, nil
}

/**
 * @brief Resolves one face corner ("v", "v/vt", "v//vn" or "v/vt/vn",
 * one-based with negative indices counting from the end) to a vertex id,
 * deduplicating repeated triples.
 */
func (b *objBuilder) resolveCorner(corner string, positions []math.Vec3, texcoords []math.Vec2, normals []math.Vec3) (uint32, error) {
	parts := strings.Split(corner, "/")

	key := [3]int{0, 0, 0}
	for i := 0; i < len(parts) && i < 3; i++ {
		if parts[i] == "" {
			continue
		}
		value, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, fmt.Errorf("invalid face corner %q", corner)
		}
		key[i] = value
	}

	if id, ok := b.corners[key]; ok {
		return id, nil
	}

	positionAt, err := absoluteIndex(key[0], len(positions))
	if err != nil {
		return 0, fmt.Errorf("face corner %q: %w", corner, err)
	}

	vertex := math.Vertex3D{
		Position: positions[positionAt],
		Colour:   math.NewVec4Create(1.0, 1.0, 1.0, 1.0),
	}
	if key[1] != 0 {
		texcoordAt, err := absoluteIndex(key[1], len(texcoords))
		if err != nil {
			return 0, fmt.Errorf("face corner %q: %w", corner, err)
		}
		vertex.Texcoord = texcoords[texcoordAt]
		b.hasTexcoords = true
	}
	if key[2] != 0 {
		normalAt, err := absoluteIndex(key[2], len(normals))
		if err != nil {
			return 0, fmt.Errorf("face corner %q: %w", corner, err)
		}
		vertex.Normal = normals[normalAt]
		b.hasNormals = true
	}

	id := uint32(len(b.vertices))
	b.vertices = append(b.vertices, vertex)
	b.corners[key] = id
	return id, nil
}

func absoluteIndex(oneBased, count int) (int, error) {
	if oneBased > 0 && oneBased <= count {
		return oneBased - 1, nil
	}
	if oneBased < 0 && -oneBased <= count {
		return count + oneBased, nil
	}
	return 0, fmt.Errorf("index %d out of range (%d entries)", oneBased, count)
}

func parseVec3(args []string) (math.Vec3, error) {
	if len(args) < 3 {
		return math.Vec3{}, fmt.Errorf("expected three components")
	}
	x, err0 := parseFloat(args[0])
	y, err1 := parseFloat(args[1])
	z, err2 := parseFloat(args[2])
	if err0 != nil || err1 != nil || err2 != nil {
		return math.Vec3{}, fmt.Errorf("invalid vector component")
	}
	return math.NewVec3(x, y, z), nil
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}

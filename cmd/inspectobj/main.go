package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"obj-voxel-importer/internal/wavefront"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: inspectobj <model.obj>")
		os.Exit(1)
	}
	path := os.Args[1]
	mesh, err := wavefront.ParseOBJFile(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Vertices: %d, Faces: %d, Triangles: %d\n", len(mesh.Vertices), len(mesh.Faces), mesh.TriangleCount())
	if lo, hi, ok := mesh.Bounds(); ok {
		size := hi.Sub(lo)
		fmt.Printf("BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n", lo.X(), hi.X(), lo.Y(), hi.Y(), lo.Z(), hi.Z())
		fmt.Printf("Size: %.3f x %.3f x %.3f\n", size.X(), size.Y(), size.Z())
		if size.Y() > 0 {
			fmt.Printf("At height 100: %.0f x 100 x %.0f blocks\n", size.X()*100/size.Y(), size.Z()*100/size.Y())
		}
	}

	facesByMat := map[string]int{}
	for _, f := range mesh.Faces {
		facesByMat[f.Material]++
	}
	names := make([]string, 0, len(facesByMat))
	for name := range facesByMat {
		names = append(names, name)
	}
	sort.Strings(names)

	var mats map[string]wavefront.Material
	if mesh.MaterialLib != "" {
		mtlPath := filepath.Join(filepath.Dir(path), filepath.FromSlash(mesh.MaterialLib))
		mats, err = wavefront.ParseMTLFile(mtlPath)
		if err != nil {
			fmt.Printf("MTL: %s (error: %v)\n", mesh.MaterialLib, err)
		} else {
			fmt.Printf("MTL: %s, %d materials\n", mesh.MaterialLib, len(mats))
		}
	}

	fmt.Println("Materials:")
	for _, name := range names {
		label := name
		if label == "" {
			label = "(none)"
		}
		line := fmt.Sprintf("  %-24s faces=%d", label, facesByMat[name])
		if m, ok := mats[name]; ok {
			if m.HasDiffuse {
				line += fmt.Sprintf(" Kd=(%d,%d,%d)", m.Diffuse.R, m.Diffuse.G, m.Diffuse.B)
			}
			if m.DiffuseMap != "" {
				line += fmt.Sprintf(" map_Kd=%q", m.DiffuseMap)
			}
		} else if name != "" && mats != nil {
			line += " (not in MTL)"
		}
		fmt.Println(line)
	}
}

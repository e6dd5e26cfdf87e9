package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/taigrr/diorama/pkg/layout"
	"github.com/taigrr/diorama/pkg/picture"
	"github.com/taigrr/diorama/pkg/primitive"
	"github.com/taigrr/diorama/pkg/render"
)

// propColor fills glTF materials that carry no color.
var propColor = primitive.MustHex("#b0a89a")

func parseBackground(s string) (render.Color, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := primitive.Hex(s)
	if err != nil {
		return render.Color{}, fmt.Errorf("parse --bg: %w", err)
	}
	return c, nil
}

// parseProp parses path@x,y,z or path@x,y,z,yaw with yaw in degrees.
func parseProp(s string) (picture.ModelRequest, error) {
	path, pose, ok := strings.Cut(s, "@")
	if !ok || path == "" {
		return picture.ModelRequest{}, fmt.Errorf("parse --prop %q: want path@x,y,z[,yaw]", s)
	}

	fields := strings.Split(pose, ",")
	if len(fields) != 3 && len(fields) != 4 {
		return picture.ModelRequest{}, fmt.Errorf("parse --prop %q: want 3 or 4 numbers, got %d", s, len(fields))
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return picture.ModelRequest{}, fmt.Errorf("parse --prop %q: %w", s, err)
		}
		v[i] = n
	}

	return picture.ModelRequest{
		Path:  path,
		Color: propColor,
		Pose:  layout.At(v[0], v[1], v[2], v[3]*math.Pi/180),
	}, nil
}

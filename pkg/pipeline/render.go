package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/level"
	"github.com/matzehuels/levelgen/pkg/render/nodelink"
)

// RenderLevel renders a level in each of the given formats.
func RenderLevel(ctx context.Context, l *level.Level, formats []string, detailed bool) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		data, err := renderFormat(ctx, l, format, detailed)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, l *level.Level, format string, detailed bool) ([]byte, error) {
	switch format {
	case FormatASCII:
		return []byte(level.RenderASCII(l)), nil
	case FormatJSON:
		return level.Marshal(l)
	case FormatGeoJSON:
		return level.MarshalGeoJSON(l)
	case FormatDOT:
		return []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: detailed})), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(l, nodelink.Options{Detailed: detailed}))
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

package config

import (
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"
)

var cropRegex = regexp.MustCompile(`^(\d+)x(\d+)\+(\d+)\+(\d+)$`)

// Crop is a rectangle given as WIDTHxHEIGHT+XOFFSET+YOFFSET.
type Crop struct {
	Width   int
	Height  int
	XOffset int
	YOffset int
}

// ParseCrop parses a WIDTHxHEIGHT+XOFFSET+YOFFSET geometry string.
func ParseCrop(s string) (Crop, error) {
	match := cropRegex.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return Crop{}, invalid("crop", "%q does not match WIDTHxHEIGHT+XOFFSET+YOFFSET", s)
	}

	var values [4]int
	for i := range values {
		v, err := strconv.Atoi(match[i+1])
		if err != nil {
			return Crop{}, invalid("crop", "%q: %v", s, err)
		}
		values[i] = v
	}

	crop := Crop{Width: values[0], Height: values[1], XOffset: values[2], YOffset: values[3]}
	if crop.Width == 0 || crop.Height == 0 {
		return Crop{}, invalid("crop", "%q has an empty area", s)
	}
	return crop, nil
}

// Geometry renders the crop in ImageMagick geometry syntax.
func (c Crop) Geometry() string {
	return fmt.Sprintf("%dx%d+%d+%d", c.Width, c.Height, c.XOffset, c.YOffset)
}

// Filter renders the crop as an ffmpeg crop filter.
func (c Crop) Filter() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.XOffset, c.YOffset)
}

// Rect returns the crop area: offsets first, then extent.
func (c Crop) Rect() image.Rectangle {
	return image.Rect(c.XOffset, c.YOffset, c.XOffset+c.Width, c.YOffset+c.Height)
}

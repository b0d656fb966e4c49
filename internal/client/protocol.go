package client

import (
	"strconv"

	"github.com/pleimann/matrixpush/internal/raster"
)

// Endpoints served by the display
const (
	EndpointSize         = "size"
	EndpointImage        = "image"
	EndpointMovingImages = "movingimages"
	EndpointGIF          = "gif"
	EndpointText         = "text"
)

// Payload is a JSON request body together with the endpoint it is posted to
type Payload interface {
	Endpoint() string
}

// sizeResponse is the body of GET /size
type sizeResponse struct {
	Size [2]int `json:"size"`
}

// ImagePayload is a single still image:
// {"size":[w,h],"hexValues":["0xHHHH",...]}
type ImagePayload struct {
	raster.Raster
}

func (ImagePayload) Endpoint() string { return EndpointImage }

// MovingImagesPayload is 2..max still images shown in turn with one delay.
// The delay is sent as a string, as the form field value was.
type MovingImagesPayload struct {
	Delay  string          `json:"delay"`
	Images []raster.Raster `json:"images"`
}

func (MovingImagesPayload) Endpoint() string { return EndpointMovingImages }

// NewMovingImagesPayload builds a payload from a millisecond delay
func NewMovingImagesPayload(delayMS int, images []raster.Raster) *MovingImagesPayload {
	return &MovingImagesPayload{Delay: strconv.Itoa(delayMS), Images: images}
}

// GIFPayload is a decomposed GIF with one delay per frame
type GIFPayload struct {
	Delays []int           `json:"delays"`
	Frames []raster.Raster `json:"frames"`
}

func (GIFPayload) Endpoint() string { return EndpointGIF }

// TextPayload asks the display to render text itself
type TextPayload struct {
	Value string    `json:"value"`
	Color [3]string `json:"color"`
	Mode  string    `json:"mode"`
}

func (TextPayload) Endpoint() string { return EndpointText }

// Rasters returns the encoded images carried by an image payload
func Rasters(p Payload) []raster.Raster {
	switch p := p.(type) {
	case *ImagePayload:
		return []raster.Raster{p.Raster}
	case *MovingImagesPayload:
		return p.Images
	case *GIFPayload:
		return p.Frames
	}
	return nil
}

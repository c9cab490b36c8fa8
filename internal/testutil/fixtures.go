// Package testutil provides shared fixtures for the package tests: a
// populated node type catalog covering the common generation node types, and
// canonical wire-format workflow documents.
package testutil

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flowcanvas/internal/catalog"
)

// TestCatalog returns a catalog populated with the node types the tests
// exercise: a checkpoint pipeline (loader, text encoders, sampler, latent,
// decode, save) plus the guider family used by single-conditioning
// workflows.
func TestCatalog() *catalog.Catalog {
	cat := catalog.New()
	cat.Populate([]*catalog.NodeType{
		{
			ClassType: "CheckpointLoaderSimple",
			Inputs: []catalog.InputSpec{
				{Name: "ckpt_name", Type: "STRING", Options: []string{"sd_xl_base_1.0.safetensors", "dreamshaper_8.safetensors"}, Required: true},
			},
			Outputs: []string{"MODEL", "CLIP", "VAE"},
		},
		{
			ClassType: "CLIPTextEncode",
			Inputs: []catalog.InputSpec{
				{Name: "text", Type: "STRING", Default: cty.StringVal(""), Required: true},
				{Name: "clip", Type: "CLIP", Required: true},
			},
			Outputs: []string{"CONDITIONING"},
		},
		{
			ClassType: "KSampler",
			Inputs: []catalog.InputSpec{
				{Name: "model", Type: "MODEL", Required: true},
				{Name: "seed", Type: "INT", Default: cty.NumberIntVal(0), Required: true},
				{Name: "steps", Type: "INT", Default: cty.NumberIntVal(20), Required: true},
				{Name: "cfg", Type: "FLOAT", Default: cty.NumberFloatVal(8), Required: true},
				{Name: "sampler_name", Type: "STRING", Options: []string{"euler", "dpmpp_2m"}, Required: true},
				{Name: "scheduler", Type: "STRING", Options: []string{"normal", "karras"}, Required: true},
				{Name: "positive", Type: "CONDITIONING", Required: true},
				{Name: "negative", Type: "CONDITIONING", Required: true},
				{Name: "latent_image", Type: "LATENT", Required: true},
				{Name: "denoise", Type: "FLOAT", Default: cty.NumberFloatVal(1), Required: true},
			},
			Outputs: []string{"LATENT"},
		},
		{
			ClassType: "EmptyLatentImage",
			Inputs: []catalog.InputSpec{
				{Name: "width", Type: "INT", Default: cty.NumberIntVal(512), Required: true},
				{Name: "height", Type: "INT", Default: cty.NumberIntVal(512), Required: true},
				{Name: "batch_size", Type: "INT", Default: cty.NumberIntVal(1), Required: true},
			},
			Outputs: []string{"LATENT"},
		},
		{
			ClassType: "VAEDecode",
			Inputs: []catalog.InputSpec{
				{Name: "samples", Type: "LATENT", Required: true},
				{Name: "vae", Type: "VAE", Required: true},
			},
			Outputs: []string{"IMAGE"},
		},
		{
			ClassType: "SaveImage",
			Inputs: []catalog.InputSpec{
				{Name: "filename_prefix", Type: "STRING", Default: cty.StringVal("output"), Required: true},
				{Name: "images", Type: "IMAGE", Required: true},
			},
			Outputs: nil,
		},
		{
			ClassType: "BasicGuider",
			Inputs: []catalog.InputSpec{
				{Name: "model", Type: "MODEL", Required: true},
				{Name: "conditioning", Type: "CONDITIONING", Required: true},
			},
			Outputs: []string{"GUIDER"},
		},
		{
			ClassType: "FluxGuidance",
			Inputs: []catalog.InputSpec{
				{Name: "conditioning", Type: "CONDITIONING", Required: true},
				{Name: "guidance", Type: "FLOAT", Default: cty.NumberFloatVal(3.5), Required: true},
			},
			Outputs: []string{"CONDITIONING"},
		},
	})
	return cat
}

// TextToImageWorkflow is a canonical checkpoint workflow: two text encoders
// wired into a sampler's positive and negative inputs, a latent allocation,
// a decode and a save.
const TextToImageWorkflow = `{
  "name": "basic t2i",
  "description": "checkpoint text to image",
  "4": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "sd_xl_base_1.0.safetensors"}},
  "1": {"class_type": "CLIPTextEncode", "inputs": {"text": "sunny day", "clip": ["4", 1]}},
  "3": {"class_type": "CLIPTextEncode", "inputs": {"text": "blurry", "clip": ["4", 1]}},
  "5": {"class_type": "EmptyLatentImage", "inputs": {"width": 1024, "height": 1024, "batch_size": 1}},
  "2": {"class_type": "KSampler", "inputs": {
    "model": ["4", 0],
    "seed": 42,
    "steps": 20,
    "cfg": 6.5,
    "sampler_name": "euler",
    "scheduler": "normal",
    "positive": ["1", 0],
    "negative": ["3", 0],
    "latent_image": ["5", 0],
    "denoise": 1.0
  }},
  "6": {"class_type": "VAEDecode", "inputs": {"samples": ["2", 0], "vae": ["4", 2]}},
  "7": {"class_type": "SaveImage", "inputs": {"filename_prefix": "out", "images": ["6", 0]}}
}`

// TemplatedWorkflow embeds {{identifier}} placeholders inside literals.
const TemplatedWorkflow = `{
  "4": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "{{checkpoint_name}}"}},
  "1": {"class_type": "CLIPTextEncode", "inputs": {"text": "{{positive_text}}, best quality", "clip": ["4", 1]}}
}`

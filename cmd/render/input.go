package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"resumePreview/internal/photo"
	"resumePreview/internal/resume"
)

// maxInputSize 限制记录文件大小，内联照片也计算在内。
const maxInputSize = 16 << 20

var errEmptyInput = errors.New("empty resume input")

// decodeRecord 接受 YAML 或 JSON。YAML 先转换为 JSON，
// 使照片等字段沿用 resume.Record 的 JSON 解码规则。
func decodeRecord(data []byte) (resume.Record, error) {
	if len(data) == 0 {
		return resume.Record{}, errEmptyInput
	}
	if len(data) > maxInputSize {
		return resume.Record{}, fmt.Errorf("resume input exceeds %d bytes", maxInputSize)
	}
	asJSON, err := yaml.YAMLToJSON(data)
	if err != nil {
		return resume.Record{}, fmt.Errorf("parse resume input: %w", err)
	}
	var rec resume.Record
	if err := json.Unmarshal(asJSON, &rec); err != nil {
		return resume.Record{}, fmt.Errorf("decode resume: %w", err)
	}
	return rec, nil
}

func loadRecord(path string, stdin io.Reader) (resume.Record, error) {
	switch path {
	case "":
		return resume.Sample(), nil
	case "-":
		data, err := io.ReadAll(io.LimitReader(stdin, maxInputSize+1))
		if err != nil {
			return resume.Record{}, fmt.Errorf("read stdin: %w", err)
		}
		return decodeRecord(data)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return resume.Record{}, fmt.Errorf("read %s: %w", path, err)
		}
		return decodeRecord(data)
	}
}

// loadPhoto 读取本地图片作为二进制照片，内容必须能识别为图片。
func loadPhoto(path string) (resume.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return resume.Photo{}, fmt.Errorf("read photo: %w", err)
	}
	blob := resume.NewBlob(data, "")
	contentType, err := photo.ContentType(blob)
	if err != nil {
		return resume.Photo{}, fmt.Errorf("photo %s: %w", path, err)
	}
	blob.ContentType = contentType
	return resume.PhotoFromBlob(blob), nil
}

package util

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoInfo 故事视频的元信息
type VideoInfo struct {
	Duration float64 `json:"duration"` // 视频时长（秒）
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Format   string  `json:"format"`
	Size     int64   `json:"size"`
}

// GetVideoInfo 使用 ffmpeg-go 探测上传视频的元数据
func GetVideoInfo(videoPath string) (*VideoInfo, error) {
	fileInfo, err := os.Stat(videoPath)
	if err != nil {
		return nil, fmt.Errorf("视频文件不存在: %v", err)
	}

	jsonOutput, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("获取视频信息失败: %v", err)
	}

	var result struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
			Size     string `json:"size"`
			Format   string `json:"format_name"`
		} `json:"format"`
	}

	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("解析视频信息失败: %v", err)
	}

	var width, height int
	for _, stream := range result.Streams {
		if stream.CodecType == "video" {
			width = stream.Width
			height = stream.Height
			break
		}
	}

	duration, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		duration = 0
	}

	size, err := strconv.ParseInt(result.Format.Size, 10, 64)
	if err != nil {
		size = fileInfo.Size()
	}

	format := "unknown"
	if len(result.Format.Format) > 0 {
		formatParts := strings.Split(result.Format.Format, ",")
		if len(formatParts) > 0 {
			format = formatParts[0]
		}
	}

	return &VideoInfo{
		Duration: duration,
		Width:    width,
		Height:   height,
		Format:   format,
		Size:     size,
	}, nil
}

// GenerateThumbnail 从视频指定时间点抓取一帧生成封面图
func GenerateThumbnail(videoPath, thumbnailPath string, timeOffset string) error {
	if err := os.MkdirAll(filepath.Dir(thumbnailPath), 0755); err != nil {
		return fmt.Errorf("创建缩略图目录失败: %v", err)
	}

	return ffmpeg.Input(videoPath, ffmpeg.KwArgs{
		"ss": timeOffset,
	}).
		Output(thumbnailPath, ffmpeg.KwArgs{
			"vframes": "1",
			"q:v":     "2",
		}).
		OverWriteOutput().
		Run()
}

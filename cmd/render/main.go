// Command render 在本地把一份简历记录渲染为 HTML、帧 JSON 或 PDF，
// 与 API 预览和导出任务走同一条渲染路径。
package main

import (
	"fmt"
	"log/slog"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	opts, err := parseFlags(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	if err := run(opts, os.Stdin, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

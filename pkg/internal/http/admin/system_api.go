package admin

import (
	"runtime"

	pkg "git.solsynth.dev/hypernet/polls/pkg/internal"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
)

func adminGetServerInfo(c *fiber.Ctx) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return c.JSON(fiber.Map{
		"version":     pkg.AppVersion,
		"go_version":  runtime.Version(),
		"cpu_num":     runtime.NumCPU(),
		"goroutines":  runtime.NumGoroutine(),
		"mem_alloc":   humanize.Bytes(m.Alloc),
		"heap_alloc":  humanize.Bytes(m.HeapAlloc),
		"total_alloc": humanize.Bytes(m.TotalAlloc),
		"sys":         humanize.Bytes(m.Sys),
	})
}

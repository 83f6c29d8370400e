package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/sarchlab/systolica/config"
	"github.com/sarchlab/systolica/gemm"
	valgen "github.com/sarchlab/systolica/util"
	"github.com/tebeka/atexit"
)

var (
	width     = 4
	numBlocks = 8
)

func setupTraceLog() *os.File {
	runFile, err := os.Create("gemm_run.log")
	if err != nil {
		panic(err)
	}

	// Trace level is LevelInfo+1, so a permissive level captures it along
	// with everything else.
	handler := slog.NewJSONHandler(runFile, &slog.HandlerOptions{
		Level: slog.Level(-100),
	})
	slog.SetDefault(slog.New(handler))

	return runFile
}

func refResult(dims gemm.Dims, a, b, c [][]int32) [][]int32 {
	d := make([][]int32, dims.M)
	for r := range d {
		d[r] = make([]int32, dims.N)
		for j := 0; j < dims.N; j++ {
			acc := c[r][j]
			for i := 0; i < dims.K; i++ {
				acc += a[r][i] * b[i][j]
			}
			d[r][j] = acc
		}
	}

	return d
}

func main() {
	runFile := setupTraceLog()
	defer func() {
		runFile.Sync()
		runFile.Close()
	}()

	platform := config.MakePlatformBuilder().
		WithWidth(width).
		WithQueueDepth(numBlocks).
		Build("Platform")
	driver := platform.Driver

	r := rand.New(rand.NewSource(42))
	gen := valgen.MakeInt8Gen(r)

	type block struct {
		desc    gemm.Descriptor
		a, b, c [][]int32
	}

	blocks := make([]block, numBlocks)
	for q := range blocks {
		base := uint32(q * 2 * width)
		blk := block{
			desc: gemm.Descriptor{
				AddrA: base, AddrB: base, AddrC: base, AddrD: base,
				Dims: gemm.Dims{M: width, K: width, N: width},
			},
			a: valgen.Matrix(width, width, gen),
			b: valgen.Matrix(width, width, gen),
			c: valgen.Matrix(width, width, gen),
		}

		driver.LoadA(base, blk.a)
		driver.LoadB(base, blk.b)
		driver.LoadC(base, blk.c)

		if _, err := driver.Submit(blk.desc); err != nil {
			panic(err)
		}
		blocks[q] = blk
	}

	driver.Run()

	mismatches := 0
	for q, blk := range blocks {
		got := driver.ReadD(blk.desc.AddrD, blk.desc.Dims.M)
		want := refResult(blk.desc.Dims, blk.a, blk.b, blk.c)
		for r0 := range want {
			for j := range want[r0] {
				if got[r0][j] != want[r0][j] {
					fmt.Printf("block %d D[%d][%d] = %d, want %d\n",
						q, r0, j, got[r0][j], want[r0][j])
					mismatches++
				}
			}
		}
	}

	fmt.Printf("ran %d blocks, %d completions, %d mismatches\n",
		numBlocks, len(driver.Completions()), mismatches)

	if mismatches > 0 {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

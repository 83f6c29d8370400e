package main

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/systolica/api"
	"github.com/sarchlab/systolica/core"
	"github.com/sarchlab/systolica/gemm"
	"github.com/tebeka/atexit"
)

func gemm2x2(driver api.Driver) {
	// 1 2     5 6      19 22
	// 3 4  x  7 8  =   43 50
	driver.LoadA(0, [][]int32{{1, 2}, {3, 4}})
	driver.LoadB(0, [][]int32{{5, 6}, {7, 8}})
	driver.LoadC(0, [][]int32{{0, 0}, {0, 0}})

	seq, err := driver.Submit(gemm.Descriptor{
		Dims: gemm.Dims{M: 2, K: 2, N: 2},
	})
	if err != nil {
		panic(err)
	}
	fmt.Println("submitted block", seq)

	driver.Run()

	fmt.Println("completed blocks:", driver.Completions())
	for _, row := range driver.ReadD(0, 2) {
		fmt.Println(row)
	}
}

func main() {
	engine := sim.NewSerialEngine()

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Driver")

	accel := core.NewBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithWidth(2).
		Build("Accel")

	driver.RegisterAccelerator(accel)

	gemm2x2(driver)

	atexit.Exit(0)
}

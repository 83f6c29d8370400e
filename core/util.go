package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	PrintToggle            = false
	LevelTrace  slog.Level = slog.LevelInfo + 1
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// PrintState dumps the array and scheduler state to stdout. Flip PrintToggle
// when chasing a cycle-level misalignment.
func PrintState(c *Comp) {
	if !PrintToggle {
		return
	}
	fmt.Printf("==============State@%s==============\n", c.Name())

	weightTable := table.NewWriter()
	weightTable.SetTitle("Active Weights / Enabled")

	header := []interface{}{"Row"}
	for j := 0; j < c.width; j++ {
		header = append(header, fmt.Sprintf("C%d", j))
	}
	weightTable.AppendHeader(header)

	for i := 0; i < c.width; i++ {
		row := []interface{}{fmt.Sprintf("R%d", i)}
		for j := 0; j < c.width; j++ {
			cl := c.array.at(i, j)
			row = append(row, fmt.Sprintf(
				"%d/%v", cl.cur.activeWeight, cl.cur.enabled))
		}
		weightTable.AppendRow(row)
	}

	fmt.Println(weightTable.Render())

	psumTable := table.NewWriter()
	psumTable.SetTitle("Bottom Psum Registers")

	psumRow := []interface{}{"Out"}
	for j := 0; j < c.width; j++ {
		out := c.array.at(c.width-1, j).cur.psumOut
		psumRow = append(psumRow, fmt.Sprintf("%d/%v", out.Value, out.Valid))
	}
	psumTable.AppendHeader(header)
	psumTable.AppendRow(psumRow)

	fmt.Println(psumTable.Render())

	schedTable := table.NewWriter()
	schedTable.SetTitle("Scheduler Stages")
	schedTable.AppendHeader(table.Row{
		"Queue", "InFlight",
		"W.Active", "W.Count",
		"I.Active", "I.Count",
		"B.Busy", "B.Wait", "B.Count",
		"WB.Depth",
	})
	schedTable.AppendRow(table.Row{
		len(c.sched.queue), c.sched.tasksInFlight,
		c.sched.wActive, c.sched.wCount,
		c.sched.iActive, c.sched.iCount,
		c.sched.bBusy, c.sched.bWait, c.sched.bCount,
		len(c.sched.wb),
	})

	fmt.Println(schedTable.Render())
	fmt.Println("================================================")
}

// LogState emits the scheduler counters as a structured checkpoint record.
func LogState(c *Comp) {
	slog.Debug("StateCheckpoint",
		"Name", c.Name(),
		"QueueLen", len(c.sched.queue),
		"TasksInFlight", c.sched.tasksInFlight,
		"WeightActive", c.sched.wActive,
		"WeightCount", c.sched.wCount,
		"InputActive", c.sched.iActive,
		"InputCount", c.sched.iCount,
		"BiasBusy", c.sched.bBusy,
		"BiasCount", c.sched.bCount,
		"WritebackDepth", len(c.sched.wb),
	)
}

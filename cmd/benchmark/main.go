package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/hosttree"
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	ww    = []int{1, 10, 100, 1_000}
	hh    = []int{1, 10, 100}
	iters = flag.Int("iters", 50, "iterations per benchmark")
)

func main() {
	flag.Parse()

	log.Printf("warming up")
	benchmarkSync(false)

	benchmarkSync(true)
	benchmarkConcurrent(true)
}

// tree builds w columns of h nested divs, with rev as the leaf text.
func tree(w, h, rev int) *fiber.Element {
	cols := make([]*fiber.Element, 0, w)
	for i := 0; i < w; i++ {
		leaf := fiber.H("span", fiber.Props{"col": i}, fiber.T(strconv.Itoa(rev)))
		for j := 0; j < h; j++ {
			leaf = fiber.H("div", fiber.Props{"depth": j}, leaf)
		}
		cols = append(cols, leaf.WithKey(strconv.Itoa(i)))
	}
	return fiber.H("main", nil, cols...)
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "nodes", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func benchmarkSync(shouldRender bool) {
	tbl := newTable("Synchronous render + commit")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: *iters})

			root, err := fiber.NewRoot(hosttree.New())
			if err != nil {
				log.Fatal(err)
			}
			if err := root.Render(tree(w, h, 0)); err != nil {
				log.Fatal(err)
			}
			for i := 1; i <= *iters; i++ {
				start := time.Now()
				if err := root.Render(tree(w, h, i)); err != nil {
					log.Fatal(err)
				}
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("update: %d * %d", w, h),
					humanize.Comma(int64(root.Stats().LiveNodes)),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

func benchmarkConcurrent(shouldRender bool) {
	tbl := newTable("Interruptible render, default budget")

	host := &scheduler.SystemHost{}
	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: *iters})

			root, err := fiber.NewRoot(hosttree.New())
			if err != nil {
				log.Fatal(err)
			}
			totalSlices := 0
			for i := 0; i <= *iters; i++ {
				start := time.Now()
				root.Schedule(tree(w, h, i), fiber.PriorityNormal)
				y := scheduler.NewYielder(host, scheduler.DefaultBudget())
				for {
					y.StartSlice()
					done, err := root.Work(y)
					if err != nil {
						log.Fatal(err)
					}
					totalSlices++
					if done {
						break
					}
				}
				if i > 0 {
					tach.AddTime(time.Since(start))
				}
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("update: %d * %d (%s slices)", w, h, humanize.Comma(int64(totalSlices))),
					humanize.Comma(int64(root.Stats().LiveNodes)),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

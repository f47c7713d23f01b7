package main

import (
	"ConnSpectra/internal/model"
	"ConnSpectra/internal/report"
	"flag"
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
)

func main() {
	top := flag.Int("top", 0, "Only list the N connections with the most payload bytes")
	class := flag.String("class", "", "Only list connections of this class")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-top N] [-class c] <report.dat>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	rep, err := report.LoadGob(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load report: %v", err)
	}
	rep.Connections = selectConnections(rep.Connections, model.Class(*class), *top)

	if err := report.Render(os.Stdout, rep); err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}
}

// selectConnections filters by class and keeps the top n by total bytes when n > 0.
func selectConnections(records []model.ConnectionRecord, class model.Class, n int) []model.ConnectionRecord {
	var out []model.ConnectionRecord
	for _, r := range records {
		if class == "" || r.Class == class {
			out = append(out, r)
		}
	}
	if n > 0 {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Bytes > out[j].Bytes })
		if len(out) > n {
			out = out[:n]
		}
	}
	return out
}

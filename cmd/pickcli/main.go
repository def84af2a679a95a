// Command pickcli evaluates a design file and prints what a line segment
// passes through, nearest first.
//
//	pickcli -from 200,150,500 -to 200,150,-500 examples/box.lignin
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/ligninpick/pkg/app"
	"github.com/chazu/ligninpick/pkg/config"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("pickcli: ")

	cfgPath := flag.String("config", "", "settings file (INI); defaults when empty")
	from := flag.String("from", "", "segment start as x,y,z")
	to := flag.String("to", "", "segment end as x,y,z")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: pickcli [flags] design.lignin\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	start, err := parseVec(*from)
	if err != nil {
		log.Fatalf("-from: %v", err)
	}
	end, err := parseVec(*to)
	if err != nil {
		log.Fatalf("-to: %v", err)
	}

	cfg, err := config.Read(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	a := app.New(cfg)
	result := a.Evaluate(string(source))
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w.Message)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				log.Printf("line %d: %s", e.Line, e.Message)
			} else {
				log.Print(e.Message)
			}
		}
		os.Exit(1)
	}

	res := a.Pick(app.PickRequest{Start: &start, End: &end})
	if res.Error != "" {
		log.Fatal(res.Error)
	}
	if len(res.Hits) == 0 {
		fmt.Println("no hits")
		return
	}
	for _, h := range res.Hits {
		fmt.Printf("%-12s %8.2f  (%.2f, %.2f, %.2f)  %s\n",
			h.Part, h.Distance, h.Point[0], h.Point[1], h.Point[2], strings.Join(h.Path, "/"))
	}
}

// parseVec reads "x,y,z".
func parseVec(s string) ([3]float64, error) {
	var v [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("want x,y,z, got %q", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = f
	}
	return v, nil
}

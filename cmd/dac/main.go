// Command dac builds a Directly Addressable Codes index over a file of
// newline-separated unsigned integers and reports its size and
// compression ratios: standard library flag parsing, fmt for the
// report, log.Fatalf on failure.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"golang.org/x/exp/slices"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	dac "github.com/cocosip/go-dac"
)

func main() {
	overhead := flag.Float64("overhead", 0.05, "fractional cost of one rank-indexed continuation bit")
	outPath := flag.String("out", "", "optional path to write the marshaled DAC index")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: dac [-overhead x] [-out file] <values-file>")
		os.Exit(2)
	}
	inputPath := args[0]

	values, err := readValues(inputPath)
	if err != nil {
		log.Fatalf("reading %s: %v", inputPath, err)
	}

	opts := dac.BuildOptions{Overhead: *overhead}
	d, err := dac.Build(values, opts)
	if err != nil {
		log.Fatalf("build: %v", err)
	}

	printReport(d)

	if *outPath != "" {
		data, err := d.MarshalBinary()
		if err != nil {
			log.Fatalf("marshal: %v", err)
		}
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			log.Fatalf("writing %s: %v", *outPath, err)
		}
	}
}

func readValues(path string) ([]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var values []uint64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		v, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", line, err)
		}
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func printReport(d *dac.DAC) {
	p := message.NewPrinter(language.English)

	p.Printf("values:        %d\n", d.Len())
	p.Printf("levels:        %d\n", d.Levels())

	widths := d.BlockSizes()
	p.Printf("block widths:  %v\n", widths)
	p.Printf("widths sum:    %d bits\n", sum(widths))

	metrics := d.BitLength()
	p.Printf("block bits:    %d\n", metrics.BlockBits)
	p.Printf("rank overhead: %.2f bits\n", metrics.RankOverheadBits)
	p.Printf("total bits:    %d\n", metrics.Total())
	p.Printf("build id:      %s\n", metrics.BuildID)

	ratios := d.CompressionRatios()
	savings := d.SpaceSavings()
	p.Printf("ratio vs vbyte:       %.3fx  (%.1f%% smaller)\n", ratios.VByte, savings.VByte*100)
	p.Printf("ratio vs fixed-width: %.3fx  (%.1f%% smaller)\n", ratios.FixedWidth, savings.FixedWidth*100)
}

func sum(widths []int) int {
	total := 0
	for _, w := range slices.Clone(widths) {
		total += w
	}
	return total
}

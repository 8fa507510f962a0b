// Command-line entry point for the aviation briefing tools.
//
// Input formats
// -------------
// NOTAM commands (extract, batch, stats) read plain text where NOTAMs are
// separated by blank lines, or CSV with "text" and optional "airport" columns
// when -csv is set.
//
// The parse command reads JSONL report messages. Each line may be:
//  1. Flat message:  {"id":1,"kind":"METAR","text":"...","airport":"KORD"}
//  2. Feed wrapper:  {"message":{...},"source":"..."}
//
// Lines without a kind are classified from their text.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "briefing - commands:")
	fmt.Fprintln(w, "  extract     - classify NOTAMs and output JSON or CSV")
	fmt.Fprintln(w, "  batch       - classify NOTAMs concurrently")
	fmt.Fprintln(w, "  stats       - aggregate statistics over a set of NOTAMs")
	fmt.Fprintln(w, "  categorize  - categorize a METAR")
	fmt.Fprintln(w, "  assess      - assess a route from station METARs and hazards")
	fmt.Fprintln(w, "  summarize   - summarise a report")
	fmt.Fprintln(w, "  parse       - parse JSONL report messages")
	fmt.Fprintln(w, "  trace       - show how each parser handles one report")
	fmt.Fprintln(w, "  fetch       - fetch live reports from aviationweather.gov")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  briefing extract -input notams.txt [-airport KJFK] [-format json|csv] [-pretty]")
	fmt.Fprintln(w, "  briefing batch -input notams.csv -csv [-workers 4] [-format json|csv]")
	fmt.Fprintln(w, "  briefing stats -input notams.txt [-format json|csv]")
	fmt.Fprintln(w, "  briefing categorize [-explain] 'METAR KJFK 151851Z ...'")
	fmt.Fprintln(w, "  briefing assess -input route.json [-dep KJFK -arr KBOS [-alt FL350]]")
	fmt.Fprintln(w, "  briefing summarize [-type NOTAM] [-config briefing.yaml] 'text'")
	fmt.Fprintln(w, "  briefing parse -input reports.jsonl [-output out.json] [-all] [-first] [-stats] [-db archive.db]")
	fmt.Fprintln(w, "  briefing trace [-type METAR] 'text'")
	fmt.Fprintln(w, "  briefing fetch -stations KJFK,KBOS [-parse] [-db archive.db]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - Input defaults to stdin and output to stdout.")
	fmt.Fprintln(w, "  - Text commands also accept the report as trailing arguments.")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "extract":
		runExtract(os.Args[2:])
	case "batch":
		runBatch(os.Args[2:])
	case "stats":
		runStats(os.Args[2:])
	case "categorize":
		runCategorize(os.Args[2:])
	case "assess":
		runAssess(os.Args[2:])
	case "summarize":
		runSummarize(os.Args[2:])
	case "parse":
		runParse(os.Args[2:])
	case "trace":
		runTrace(os.Args[2:])
	case "fetch":
		runFetch(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// openInput returns stdin when path is empty.
func openInput(path string) (io.Reader, func()) {
	if path == "" {
		return os.Stdin, func() {}
	}
	f, err := os.Open(path)
	if err != nil {
		fatalf("Failed to open input: %v", err)
	}
	return f, func() { _ = f.Close() }
}

// textInput joins trailing arguments, or reads all of path (or stdin).
func textInput(args []string, path string) string {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " "))
	}
	r, done := openInput(path)
	defer done()
	b, err := io.ReadAll(r)
	if err != nil {
		fatalf("Failed to read input: %v", err)
	}
	return strings.TrimSpace(string(b))
}

func writeOutput(path string, b []byte) {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			fatalf("Failed to create output: %v", err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriterSize(w, 1<<20)
	_, _ = bw.Write(b)
	if len(b) == 0 || b[len(b)-1] != '\n' {
		_, _ = bw.WriteString("\n")
	}
	if err := bw.Flush(); err != nil {
		fatalf("Failed to write output: %v", err)
	}
}

func writeJSON(path string, v any, pretty bool) {
	b, err := marshalJSON(v, pretty)
	if err != nil {
		fatalf("JSON marshal error: %v", err)
	}
	writeOutput(path, b)
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// Command parttest runs every part of the game headless for a number of
// frames and records what happened, with a screenshot of the last frame.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"

	"github.com/davetcode/goaw/audio"
	"github.com/davetcode/goaw/resource"
	"github.com/davetcode/goaw/video"
	"github.com/davetcode/goaw/vm"
	"github.com/logrusorgru/aurora/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// PartResult - Outcome of running one part
type PartResult struct {
	Part         uint16      `json:"part"`
	Name         string      `json:"name"`
	Success      bool        `json:"success"`
	Skipped      bool        `json:"skipped,omitempty"`
	Frames       uint64      `json:"frames"`
	FinalPart    uint16      `json:"final_part"`
	Drawing      video.Stats `json:"drawing"`
	SoundCalls   int         `json:"sound_calls"`
	Screenshot   string      `json:"screenshot,omitempty"`
	PanicMessage string      `json:"panic_message,omitempty"`
	StackTrace   string      `json:"stack_trace,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

type runOptions struct {
	frames    int
	outputDir string
	log       *logrus.Logger
}

func main() {
	dataDir := flag.String("data", ".", "Directory holding MEMLIST.BIN and the BANK files")
	outputDir := flag.String("output", "testdata", "Directory to write results and screenshots to")
	single := flag.Uint("part", 0, "Run a single part, 16000-16009")
	frames := flag.Int("frames", 500, "Frames to run each part for")
	level := flag.String("log-level", "warning", "logrus level")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if l, err := logrus.ParseLevel(*level); err == nil {
		log.SetLevel(l)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Printf("Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	opts := runOptions{frames: *frames, outputDir: *outputDir, log: log}
	storage := os.DirFS(*dataDir)

	if *single != 0 {
		runSinglePart(storage, resource.PartID(*single), opts)
		return
	}
	runAllParts(storage, opts)
}

func runAllParts(storage fs.FS, opts runOptions) {
	parts := resource.AllParts()
	bar := progressbar.NewOptions(len(parts),
		progressbar.OptionSetDescription("parts"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	var results []PartResult
	for _, id := range parts {
		bar.Describe(id.Name())
		results = append(results, runPartTest(storage, id, opts))
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Println()

	passed, failed, skipped := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
			fmt.Printf("%s %05d %s\n", aurora.Yellow("-"), r.Part, r.Name)
		case r.Success:
			passed++
			fmt.Printf("%s %05d %s (%d frames, %d presents)\n", aurora.Green("✓"), r.Part, r.Name, r.Frames, r.Drawing.Presents)
		default:
			failed++
			fmt.Printf("%s %05d %s\n", aurora.Red("✗"), r.Part, r.Name)
			fmt.Printf("        Error: %s\n", aurora.Red(r.ErrorMessage))
		}
	}

	resultsPath := filepath.Join(opts.outputDir, "part_results.json")
	if err := writeResults(resultsPath, results); err != nil {
		fmt.Printf("Failed to write results: %v\n", err)
	} else {
		fmt.Printf("\nResults written to %s\n", resultsPath)
	}

	fmt.Printf("\n=== SUMMARY ===\nPassed: %d\nFailed: %d\nSkipped: %d\nTotal: %d\n",
		passed, failed, skipped, len(results))
	if failed > 0 {
		os.Exit(1)
	}
}

func runSinglePart(storage fs.FS, id resource.PartID, opts runOptions) {
	if !id.Valid() {
		fmt.Printf("Not a part: %d\n", uint16(id))
		os.Exit(1)
	}

	result := runPartTest(storage, id, opts)
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if result.PanicMessage != "" {
		fmt.Printf("Stack: %s\n", result.StackTrace)
	}
	if !result.Success && !result.Skipped {
		os.Exit(1)
	}
}

func writeResults(path string, results []PartResult) error {
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

// runPartTest - Runs one part from a fresh engine with a manual clock, so
// nothing waits on real time.
func runPartTest(storage fs.FS, id resource.PartID, opts runOptions) (result PartResult) {
	result.Part = uint16(id)
	result.Name = id.Name()

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.PanicMessage = fmt.Sprintf("%v", r)
			result.StackTrace = string(debug.Stack())
			result.ErrorMessage = "panic: " + result.PanicMessage
		}
	}()

	log := opts.log.WithField("part", uint16(id))
	screen := video.New(video.Options{
		Strings: resource.EnglishStrings(),
		Log:     log.WithField("component", "video"),
	})
	sounds := audio.NewCache(log.WithField("component", "audio"))
	mixer := &audio.Recorder{}

	res, err := resource.NewManager(storage, resource.Options{
		Screen: screen,
		Sounds: sounds,
		Log:    log.WithField("component", "resource"),
	})
	if err != nil {
		result.ErrorMessage = err.Error()
		return
	}
	if id >= resource.PartPassword && !res.HasPassword() {
		result.Skipped = true
		return
	}

	e := vm.New(vm.Options{
		Resources: res,
		Display:   screen,
		Mixer:     mixer,
		Sounds:    sounds,
		Clock:     vm.NewManualClock(vm.DefaultFrameHz),
		Log:       log.WithField("component", "vm"),
	})
	if err := e.Restart(id); err != nil {
		result.ErrorMessage = err.Error()
		return
	}

	ctx := context.Background()
	for i := 0; i < opts.frames; i++ {
		if err := e.RunFrame(ctx); err != nil {
			result.ErrorMessage = err.Error()
			break
		}
	}

	result.Frames = e.Frames()
	result.FinalPart = uint16(e.Part())
	result.Drawing = screen.Stats()
	result.SoundCalls = len(mixer.Calls())

	if opts.outputDir != "" {
		path := filepath.Join(opts.outputDir, strconv.Itoa(int(id))+".png")
		if err := writeScreenshot(path, screen); err != nil {
			log.WithError(err).Warn("cannot write screenshot")
		} else {
			result.Screenshot = path
		}
	}

	result.Success = result.ErrorMessage == ""
	return
}

func writeScreenshot(path string, screen *video.Video) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := video.WritePNG(f, screen.Frame(), 2); err != nil {
		f.Close() // nolint:errcheck
		return err
	}
	return f.Close()
}

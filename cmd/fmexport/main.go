// Command fmexport renders a score file to a 16-bit PCM WAVE file
// without touching the system audio device.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/waveforge/fmforge"
	"github.com/waveforge/fmforge/internal/wav"
	"github.com/waveforge/fmforge/internal/score"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		scorePath  = flag.String("file", "", "path to a score file")
		outPath    = flag.String("out", "out.wav", "path to write the rendered WAVE file")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
	)
	flag.Parse()

	if *scorePath == "" {
		log.Fatal("fmexport: -file is required")
	}
	data, err := os.ReadFile(*scorePath)
	if err != nil {
		log.Fatal(err)
	}
	song, err := score.Parse(string(data))
	if err != nil {
		log.Fatal(err)
	}

	eng, err := fmforge.NewEngine(song, fmforge.DefaultPatches(len(song.Parts)), *sampleRate)
	if err != nil {
		log.Fatal(err)
	}
	eng.SetVolume(*volume)

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	w, err := wav.New(f, *sampleRate)
	if err != nil {
		log.Fatal(err)
	}

	var written int64
	for {
		block := eng.NextQuantum()
		if block == nil {
			break
		}
		if err := w.WriteBlock(block); err != nil {
			log.Fatal(err)
		}
		written += int64(len(block))
		if written%wav.ChunkSize < int64(fmforge.Block) {
			fmt.Printf("rendered %d samples\n", written)
		}
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s (%d samples)\n", *outPath, written)
}

// Command fmplay plays a score file through the system audio device.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/waveforge/fmforge"
	"github.com/waveforge/fmforge/internal/device"
	"github.com/waveforge/fmforge/internal/scheduler"
	"github.com/waveforge/fmforge/internal/score"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		scorePath  = flag.String("file", "", "path to a score file")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
	)
	flag.Parse()

	if *scorePath == "" {
		log.Fatal("fmplay: -file is required")
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

	pl, err := device.NewPlayer(*sampleRate, eng)
	if err != nil {
		log.Fatal(err)
	}
	pl.Play()

	for ev := range eng.Watch() {
		if ev.Kind == scheduler.EventPlaybackEnded {
			fmt.Println("playback completed")
		}
	}
	pl.Stop()
}

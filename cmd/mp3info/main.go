// Package main provides the mp3info CLI for inspecting MP3 files: stream
// parameters read back from the last decoded frame, and any ID3v2 tag.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bogem/id3v2/v2"
	"github.com/urfave/cli/v3"

	mp3 "github.com/corvidae-audio/mp3dec"
)

func main() {
	app := &cli.Command{
		Name:      "mp3info",
		Usage:     "Inspect an MP3 file's stream parameters and ID3v2 tag",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "self-contained",
				Aliases: []string{"s"},
				Usage:   "treat the stream as self-contained (RTP) framed: every frame's main_data_begin must be 0",
			},
		},
		Action: runInfo,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runInfo(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("expected exactly one argument: file path, got %d", cmd.NArg())
	}
	path := cmd.Args().First()

	if err := printTag(path); err != nil {
		fmt.Fprintf(os.Stderr, "tag: %v\n", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	if cmd.Bool("self-contained") {
		d.SetSelfContainedFrames(true)
	}

	buf := make([]byte, 32*1024)
	for {
		if _, err := d.Read(buf); err != nil {
			break
		}
	}

	fmt.Printf("sample rate: %d Hz\n", d.SampleRate())
	fmt.Printf("length:      %d bytes\n", d.Length())
	fmt.Printf("duration:    %v\n", d.Duration())
	if info, ok := d.LastFrameInfo(); ok {
		fmt.Printf("version:     %s\n", info.Version)
		fmt.Printf("bitrate:     %d kbps\n", info.BitrateKbps)
		fmt.Printf("channels:    %d\n", info.Channels)
	}
	return nil
}

func printTag(path string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if title := tag.Title(); title != "" {
		fmt.Printf("title:       %s\n", title)
	}
	if artist := tag.Artist(); artist != "" {
		fmt.Printf("artist:      %s\n", artist)
	}
	if album := tag.Album(); album != "" {
		fmt.Printf("album:       %s\n", album)
	}
	return nil
}

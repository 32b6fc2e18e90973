package main

import (
	"fmt"
	"os"
	"time"

	"github.com/LJS360d/goba-core/internal/core"
	"github.com/LJS360d/goba-core/internal/video"
	"github.com/LJS360d/goba-core/util/dbg"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gobacore",
		Short: "A GBA core: runs a ROM headlessly and dumps frames as PNG",
	}

	var biosPath string
	var frames int
	var dumpDir string
	var scale int

	runCmd := &cobra.Command{
		Use:   "run [rom]",
		Short: "Run a ROM for a fixed number of frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			romData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading ROM: %w", err)
			}

			var biosData []byte
			if biosPath != "" {
				biosData, err = os.ReadFile(biosPath)
				if err != nil {
					return fmt.Errorf("reading BIOS: %w", err)
				}
			}

			c, err := core.New(biosData, romData)
			if err != nil {
				return err
			}

			start := time.Now()
			produced := 0
			for produced < frames {
				if c.Step() {
					produced++
					if dumpDir != "" {
						if err := dumpFrame(c, dumpDir, produced, scale); err != nil {
							return err
						}
					}
				}
			}
			dbg.Printf("gobacore: %d frames in %s\n", produced, time.Since(start))
			fmt.Printf("rendered %d frames\n", produced)
			return nil
		},
	}
	runCmd.Flags().StringVar(&biosPath, "bios", "", "Path to a GBA BIOS image (optional)")
	runCmd.Flags().IntVar(&frames, "frames", 60, "Number of frames to run before exiting")
	runCmd.Flags().StringVar(&dumpDir, "dump", "", "Directory to write frame PNGs into (empty = don't dump)")
	runCmd.Flags().IntVar(&scale, "scale", 1, "Integer upscale factor for dumped PNGs")

	infoCmd := &cobra.Command{
		Use:   "info [rom]",
		Short: "Print a ROM's parsed header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			romData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading ROM: %w", err)
			}
			c, err := core.New(nil, romData)
			if err != nil {
				return err
			}
			h := c.Header()
			fmt.Printf("Title:      %s\n", h.Title)
			fmt.Printf("Game code:  %s\n", h.GameCode)
			fmt.Printf("Maker code: %s\n", h.MakerCode)
			fmt.Printf("Entry:      0x%08X\n", h.EntryPoint)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, infoCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func dumpFrame(c *core.Core, dir string, index, scale int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := fmt.Sprintf("%s/frame-%04d.png", dir, index)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return video.WritePNG(f, c.Frame(), scale)
}

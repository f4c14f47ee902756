package main

import (
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/nerbatch/internal/annotations"
	"github.com/agenthands/nerbatch/internal/server"
)

var annotationsCmd = &cobra.Command{
	Use:   "annotations",
	Short: "Serve annotated training files with highlighted entities",
	RunE:  runAnnotations,
}

var (
	annotationsDir  string
	annotationsHost string
	annotationsPort int
)

func init() {
	annotationsCmd.Flags().StringVarP(&annotationsDir, "dir", "d", "data/sample/train/json", "Directory of JSON annotation files")
	annotationsCmd.Flags().StringVar(&annotationsHost, "host", "127.0.0.1", "Listen host")
	annotationsCmd.Flags().IntVar(&annotationsPort, "port", 8753, "Listen port")

	rootCmd.AddCommand(annotationsCmd)
}

func runAnnotations(_ *cobra.Command, _ []string) error {
	docs, err := annotations.Load(annotationsDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no annotations found in %s", annotationsDir)
	}

	colors := annotations.Colors(docs, rand.New(rand.NewSource(time.Now().UnixNano())))
	srv := server.NewServer(docs, colors, logger)
	r := srv.SetupRouter()

	addr := net.JoinHostPort(annotationsHost, strconv.Itoa(annotationsPort))
	logger.Info("Serving annotations", zap.String("addr", addr), zap.Int("documents", len(docs)))
	return r.Run(addr)
}

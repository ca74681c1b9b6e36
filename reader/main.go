// Command reader reads a Japanese Residence Card or Special Permanent
// Resident Certificate over a PC/SC contactless reader and prints its data
// and signature verification result.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dadachi/readmynumber-plus-sub000/internal/pcsc"
	"github.com/dadachi/readmynumber-plus-sub000/pkg/rdc"
	"github.com/dadachi/readmynumber-plus-sub000/reader/internal/config"
	"github.com/dadachi/readmynumber-plus-sub000/reader/internal/display"
)

const configFileName = "config.yaml"

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	cardNumberFlag := flag.String("card-number", "", "12-character card number (e.g. AB12345678CD)")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if *logFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	if *cardNumberFlag == "" {
		log.Fatal("missing required flag -card-number")
	}
	cardNumber, err := rdc.ParseCardNumber(*cardNumberFlag)
	if err != nil {
		log.Fatalf("invalid card number: %v", err)
	}

	configPath, err := defaultConfigPath()
	if err != nil {
		log.Fatalf("resolve config path failed: %v", err)
	}
	fmt.Printf("Using config: %s\n", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	conn, err := pcsc.Connect(*cfg.Runtime.ReaderIndex)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	fmt.Printf("Using reader: %s\n", conn.Reader())

	data, err := rdc.ReadCard(conn, cardNumber)
	if err != nil {
		log.Fatalf("read card failed: %v", err)
	}

	switch cfg.Output.Format {
	case "json":
		printJSON(data)
	default:
		display.PrintCardData(data)
	}
}

func defaultConfigPath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", err
	}
	exeConfigPath := filepath.Join(filepath.Dir(exePath), configFileName)
	if fileExists(exeConfigPath) {
		return exeConfigPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return exeConfigPath, nil
	}
	cwdConfigPath := filepath.Join(cwd, configFileName)
	if fileExists(cwdConfigPath) {
		return cwdConfigPath, nil
	}
	return exeConfigPath, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func printJSON(data *rdc.ResidenceCardData) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		log.Fatalf("encode json: %v", err)
	}
}

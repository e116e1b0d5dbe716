package commands

import (
	"context"
	"fmt"

	"malaskkn/lib/scrapers/simaster/logbook"
	"malaskkn/services/kkn"
)

// program and entry selection is 1-based to match the numbering every
// list command prints

func selectProgram(ctx context.Context, service *kkn.Service, cfg Config, index int) (logbook.Program, error) {
	programs, err := service.Programs(ctx, cfg.Account())
	if err != nil {
		return logbook.Program{}, err
	}
	if index < 1 || index > len(programs) {
		return logbook.Program{}, fmt.Errorf("program %d does not exist, there are %d programs", index, len(programs))
	}
	return programs[index-1], nil
}

func selectEntry(ctx context.Context, service *kkn.Service, cfg Config, programIndex, entryIndex int) (logbook.MainEntry, error) {
	program, err := selectProgram(ctx, service, cfg, programIndex)
	if err != nil {
		return logbook.MainEntry{}, err
	}
	entries, err := service.MainEntries(ctx, cfg.Account(), program)
	if err != nil {
		return logbook.MainEntry{}, err
	}
	if entryIndex < 1 || entryIndex > len(entries) {
		return logbook.MainEntry{}, fmt.Errorf("entry %d does not exist, there are %d entries", entryIndex, len(entries))
	}
	return entries[entryIndex-1], nil
}

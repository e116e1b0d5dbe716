package main

import (
	"context"
	"os"

	"malaskkn/cmd/kkn-cli/commands"
	"malaskkn/lib/telemetry"
	"malaskkn/lib/util/serviceutil"
)

func main() {
	err := telemetry.SetupFromEnv(context.Background(), "kkn-cli")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	telemetry.InitSlog(false)
	commands.ExecuteContext(context.Background())
}

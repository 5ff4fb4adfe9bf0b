package main

import (
	"context"
	"os"

	"infinite-craft/cmd/craft-cli/commands"
	"infinite-craft/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "craft-cli")
	telemetry.InitSlog(os.Getenv("CRAFT_DEBUG") != "")
	commands.ExecuteContext(context.Background())
}

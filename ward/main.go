package main

import (
	"fmt"
	"os"

	"github.com/blizzen/wardbot/usersmodule"
	"github.com/blizzen/wardbot/wardbot"
	"github.com/joho/godotenv"
)

func loader(guild *wardbot.GuildInfo) []wardbot.Module {
	modules := make([]wardbot.Module, 0, 2)
	modules = append(modules, &wardbot.InfoModule{})
	modules = append(modules, usersmodule.New())
	return modules
}

func mainCode() int {
	godotenv.Load()
	conf, err := wardbot.LoadEnvConfig()
	if err != nil {
		fmt.Println("Invalid configuration: ", err.Error())
		return 1
	}
	bot, err := wardbot.New(conf, loader)
	if err != nil {
		fmt.Println("Failed to start: ", err.Error())
		return 1
	}
	return bot.Connect()
}
func main() { os.Exit(mainCode()) }

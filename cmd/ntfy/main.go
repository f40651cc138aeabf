package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/vict0rsch/ntfy-go/internal/application"
	"github.com/vict0rsch/ntfy-go/internal/logging"
)

func main() {
	app := kingpin.New("ntfy", "Configuration-backed notification dispatch for ntfy gateways")
	confPath := app.Flag("conf-path", "Path to the configuration file (default: $NTFY_CONF_PATH or $CWD/.ntfy.conf)").
		Envar("NTFY_CONF_PATH").String()
	verbose := app.Flag("verbose", "Enable debug logging").Short('v').Bool()
	logJSON := app.Flag("log-json", "Emit structured JSON logs instead of console output").Bool()

	send := app.Command("send", "Send a notification to the configured topics and emails")
	sendParams := application.SendParams{}
	send.Arg("message", "The message to send").Required().StringVar(&sendParams.Message)
	// Action callbacks only fire for flags present on the command line,
	// which is how --emails "" (explicit empty) is told apart from the
	// flag being omitted.
	send.Flag("topics", "Comma-separated topics to notify, overriding the configuration").
		Action(func(*kingpin.ParseContext) error { sendParams.TopicsSet = true; return nil }).
		StringVar(&sendParams.Topics)
	send.Flag("emails", "Comma-separated emails to notify; pass an empty value to suppress configured emails").
		Action(func(*kingpin.ParseContext) error { sendParams.EmailsSet = true; return nil }).
		StringVar(&sendParams.Emails)
	send.Flag("base-url", "Comma-separated gateway base URLs").StringVar(&sendParams.BaseURLs)
	send.Flag("title", "Notification title").StringVar(&sendParams.Title)
	send.Flag("priority", "Notification priority (1-5 or min/low/default/high/max)").StringVar(&sendParams.Priority)
	send.Flag("tags", "Comma-separated notification tags").StringVar(&sendParams.Tags)
	send.Flag("click", "URL to open when the notification is clicked").StringVar(&sendParams.Click)
	send.Flag("attach", "Attachment: a local file path or a remote URL").StringVar(&sendParams.Attach)
	send.Flag("actions", "Comma-separated notification actions").StringVar(&sendParams.Actions)
	send.Flag("icon", "Notification icon URL").StringVar(&sendParams.Icon)
	send.Flag("defaults-file", "YAML file with one-shot message defaults").StringVar(&sendParams.DefaultsFile)
	send.Flag("debug", "Print every resolved request before sending").BoolVar(&sendParams.Debug)

	initCmd := app.Command("init", "Create a configuration file with a generated topic")
	initForce := initCmd.Flag("force", "Overwrite an existing configuration file").Bool()

	clean := app.Command("clean", "Delete the configuration file")
	cleanForce := clean.Flag("force", "Skip the confirmation prompt").Bool()

	add := app.Command("add", "Add a notification target or a message default")
	addTopic := add.Command("topic", "Add a topic to the configuration file")
	addTopicValue := addTopic.Arg("topic", "Topic identifier").Required().String()
	addEmail := add.Command("email", "Add an email to the configuration file")
	addEmailValue := addEmail.Arg("email", "Email address").Required().String()
	addDefault := add.Command("default", "Add a message default to the configuration file")
	addDefaultKey := addDefault.Arg("key", "Default key").Required().String()
	addDefaultValue := addDefault.Arg("value", "Default value").Required().String()

	remove := app.Command("remove", "Remove a notification target or a message default")
	removeTopic := remove.Command("topic", "Remove a topic from the configuration file")
	removeTopicValue := removeTopic.Arg("topic", "Topic identifier").Required().String()
	removeEmail := remove.Command("email", "Remove an email from the configuration file")
	removeEmailValue := removeEmail.Arg("email", "Email address").Required().String()
	removeDefault := remove.Command("default", "Remove a message default from the configuration file")
	removeDefaultKey := removeDefault.Arg("key", "Default key").Required().String()

	newTopic := app.Command("new-topic", "Generate a random topic name")
	newTopicSave := newTopic.Flag("save", "Save the generated topic to the configuration file").Bool()

	describe := app.Command("describe", "Show the notifier resolved from the configuration file")

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	var logger *zap.Logger
	var err error
	if *logJSON {
		logger, err = logging.New()
	} else {
		logger, err = logging.NewCLI(*verbose)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	cli := application.New(logger)
	sendParams.ConfPath = *confPath

	switch command {
	case send.FullCommand():
		err = cli.Send(context.Background(), sendParams)
	case initCmd.FullCommand():
		err = cli.Init(*confPath, *initForce)
	case clean.FullCommand():
		err = cli.Clean(*confPath, *cleanForce)
	case addTopic.FullCommand():
		err = cli.AddTopic(*confPath, *addTopicValue)
	case addEmail.FullCommand():
		err = cli.AddEmail(*confPath, *addEmailValue)
	case addDefault.FullCommand():
		err = cli.AddDefault(*confPath, *addDefaultKey, *addDefaultValue)
	case removeTopic.FullCommand():
		err = cli.RemoveTopic(*confPath, *removeTopicValue)
	case removeEmail.FullCommand():
		err = cli.RemoveEmail(*confPath, *removeEmailValue)
	case removeDefault.FullCommand():
		err = cli.RemoveDefault(*confPath, *removeDefaultKey)
	case newTopic.FullCommand():
		err = cli.NewTopic(*confPath, *newTopicSave)
	case describe.FullCommand():
		err = cli.Describe(*confPath)
	}
	if err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/AshkanYarmoradi/go-foundation/cli/styles"
	"github.com/AshkanYarmoradi/go-foundation/cli/ui"
)

// NewMessageCommand creates the message command
func NewMessageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "message",
		Short:   "Create and inspect serialized messages",
		Aliases: []string{"msg"},
	}

	cmd.AddCommand(newMessageInspectCommand())
	cmd.AddCommand(newMessageNewCommand())

	return cmd
}

func newMessageInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Decode a serialized message",
		Long: `Decode a message in its JSON wire form and print its id, type, body and attributes.
The message is read from the file, or from stdin when no file or "-" is given.

Examples:
  foundation message inspect message.json
  cat message.json | foundation message inspect`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			message, err := foundation.DeserializeMessage(strings.TrimSpace(string(data)))
			if err != nil {
				return err
			}

			printMessage(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func newMessageNewCommand() *cobra.Command {
	var (
		body        string
		messageType string
		id          string
		withID      bool
		attrs       []string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Build a serialized message",
		Long: `Build a message and print its JSON wire form.

Attributes are given as name=value, or name:DataType=value for a custom data type.

Examples:
  foundation message new --body '{"orderId":"42"}' --type orders.place --attr bodyType=PlaceOrder
  foundation message new --body '{}' --with-id --attr priority:Number=3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			attributes := make(map[string]foundation.MessageAttribute, len(attrs))
			for _, raw := range attrs {
				name, attr, err := parseAttribute(raw)
				if err != nil {
					return err
				}
				attributes[name] = attr
			}

			message := foundation.CreateMessageWithAttributes(body, attributes)
			if messageType != "" {
				message = message.WithType(messageType)
			}
			switch {
			case id != "":
				message = message.WithID(id)
			case withID:
				message = message.WithGeneratedID()
			}

			serialized, err := foundation.SerializeMessage(message)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), serialized)
			return nil
		},
	}

	cmd.Flags().StringVar(&body, "body", "", "Message body")
	cmd.Flags().StringVar(&messageType, "type", "", "Message type")
	cmd.Flags().StringVar(&id, "id", "", "Message id")
	cmd.Flags().BoolVar(&withID, "with-id", false, "Generate a random UUID as message id")
	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "Attribute as name=value or name:DataType=value (repeatable)")

	return cmd
}

// parseAttribute parses name=value or name:DataType=value.
func parseAttribute(raw string) (string, foundation.MessageAttribute, error) {
	key, value, ok := strings.Cut(raw, "=")
	if !ok || key == "" {
		return "", foundation.MessageAttribute{}, fmt.Errorf("invalid attribute %q, expected name=value", raw)
	}
	name, dataType, typed := strings.Cut(key, ":")
	if name == "" || (typed && dataType == "") {
		return "", foundation.MessageAttribute{}, fmt.Errorf("invalid attribute %q, expected name:DataType=value", raw)
	}
	if !typed {
		return name, foundation.CreateStringAttribute(value), nil
	}
	return name, foundation.CreateAttribute(dataType, value), nil
}

func printMessage(w io.Writer, message foundation.Message) {
	id, ok := message.ID()
	if !ok {
		id = "-"
	}
	messageType, ok := message.Type()
	if !ok {
		messageType = "-"
	}

	fmt.Fprintln(w, styles.FormatKeyValue("ID", id))
	fmt.Fprintln(w, styles.FormatKeyValue("Type", messageType))
	fmt.Fprintln(w, styles.FormatKeyValue("Body", message.Body()))

	attributes := message.Attributes()
	if len(attributes) == 0 {
		fmt.Fprintln(w, styles.FormatInfo("No attributes"))
		return
	}

	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	table := ui.NewTable("Attribute", "Data Type", "Value")
	for _, name := range names {
		attr := attributes[name]
		value, ok := attr.StringValue()
		if b, isBinary := attr.BinaryValue(); isBinary {
			value = ui.Pluralize(len(b), "byte")
		} else if !ok {
			value = "-"
		}
		table.AddRow(name, attr.DataType(), value)
	}
	fmt.Fprintln(w, table.Render())
}

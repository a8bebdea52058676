package cogext

import (
	"errors"
	"testing"

	"github.com/a04k/cogslash/model"
	"github.com/a04k/cogslash/utils"

	"github.com/bwmarrin/discordgo"
)

type testCog struct {
	got interface{}
}

type sayArgs struct {
	Text  string `desc:"What to say"`
	Times *int
}

func (c *testCog) GroupSay(_ *model.Context, args sayArgs) error {
	c.got = args
	return nil
}

func (c *testCog) Documented(_ *model.Context, _ model.NoArgs) error { return nil }

func (c *testCog) Raw(_ *model.Context, values map[string]interface{}) error {
	c.got = values
	return nil
}

func init() {
	utils.RegisterDoc((*testCog).Documented, "\n    Shows the docs.\n")
}

func TestSlashDefaults(t *testing.T) {
	c := &testCog{}
	cmd, err := Slash(c.GroupSay, SlashOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Name() != "group_say" {
		t.Fatalf("Name = %q, want group_say", cmd.Name())
	}
	if cmd.Description() != "No description" {
		t.Fatalf("Description = %q", cmd.Description())
	}
	if cmd.HasSubcommands() {
		t.Fatal("slash command must not have subcommands")
	}
	if cmd.AllowedGuildIDs() != nil {
		t.Fatal("no guild IDs expected")
	}

	opts := cmd.Options()
	if len(opts) != 2 {
		t.Fatalf("got %d options", len(opts))
	}
	if opts[0].Description != "What to say" || !opts[0].Required {
		t.Fatalf("text option = %+v", opts[0])
	}
	if opts[1].Name != "times" || opts[1].Description != "No description" || opts[1].Required {
		t.Fatalf("times option = %+v", opts[1])
	}
	convert := cmd.AutoConvert()
	if convert["text"] != discordgo.ApplicationCommandOptionString || convert["times"] != discordgo.ApplicationCommandOptionInteger {
		t.Fatalf("AutoConvert = %v", convert)
	}
}

func TestSlashDescriptionChain(t *testing.T) {
	c := &testCog{}

	cmd := MustSlash(c.Documented, SlashOptions{})
	if cmd.Description() != "Shows the docs." {
		t.Fatalf("doc fallback: %q", cmd.Description())
	}
	cmd = MustSlash(c.Documented, SlashOptions{Description: "Explicit"})
	if cmd.Description() != "Explicit" {
		t.Fatalf("explicit description: %q", cmd.Description())
	}

	cmd = MustSlash(c.GroupSay, SlashOptions{Name: "say", Description: "Says"})
	if cmd.Options()[1].Description != "Says" {
		t.Fatalf("option description should default to the command description, got %q", cmd.Options()[1].Description)
	}
}

func TestSlashOptionsAndAutoConvert(t *testing.T) {
	c := &testCog{}
	given := model.AutoConvert{"user": discordgo.ApplicationCommandOptionUser}

	// Explicit empty options: no generation, the caller's map is kept.
	cmd := MustSlash(c.GroupSay, SlashOptions{Options: []*discordgo.ApplicationCommandOption{}, AutoConvert: given})
	if cmd.Options() == nil || len(cmd.Options()) != 0 {
		t.Fatalf("Options = %#v, want empty non-nil", cmd.Options())
	}
	if cmd.AutoConvert()["user"] != discordgo.ApplicationCommandOptionUser {
		t.Fatalf("AutoConvert = %v, want the given map", cmd.AutoConvert())
	}

	// Options present: the map is generated and the given one ignored.
	cmd = MustSlash(c.Raw, SlashOptions{
		Name:        "raw",
		AutoConvert: given,
		Options: []*discordgo.ApplicationCommandOption{
			utils.CreateOption("role", "d", discordgo.ApplicationCommandOptionRole, true),
		},
	})
	convert := cmd.AutoConvert()
	if len(convert) != 1 || convert["role"] != discordgo.ApplicationCommandOptionRole {
		t.Fatalf("AutoConvert = %v", convert)
	}

	// No options generated (NoArgs): the caller's map is used.
	cmd = MustSlash(c.Documented, SlashOptions{AutoConvert: given})
	if len(cmd.Options()) != 0 || cmd.AutoConvert()["user"] != discordgo.ApplicationCommandOptionUser {
		t.Fatalf("NoArgs: options=%v convert=%v", cmd.Options(), cmd.AutoConvert())
	}

	_, err := Slash(c.Raw, SlashOptions{Options: []*discordgo.ApplicationCommandOption{
		{Name: "sub", Type: discordgo.ApplicationCommandOptionSubCommand},
	}})
	if !errors.Is(err, utils.ErrSubcommandOption) {
		t.Fatalf("err = %v, want ErrSubcommandOption", err)
	}

	if _, err := Slash(c.Raw, SlashOptions{}); !errors.Is(err, utils.ErrNotStruct) {
		t.Fatalf("map handler without options: err = %v, want ErrNotStruct", err)
	}

	sized := func(_ *model.Context, _ struct {
		Size int `choices:"small,large"`
	}) error {
		return nil
	}
	if _, err := Slash(sized, SlashOptions{Name: "size"}); !errors.Is(err, utils.ErrInvalidChoice) {
		t.Fatalf("bad integer choices: err = %v, want ErrInvalidChoice", err)
	}
}

func TestSubcommand(t *testing.T) {
	c := &testCog{}
	sub, err := Subcommand(c.GroupSay, SubcommandOptions{
		Base:     "group",
		Name:     "say",
		BaseDesc: "Group things",
		GuildIDs: []string{"1", "2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if sub.Base() != "group" || sub.Name() != "say" || sub.SubcommandGroup() != "" {
		t.Fatalf("unexpected path %q", sub.Key())
	}
	if sub.BaseDescription() != "Group things" {
		t.Fatalf("BaseDescription = %q", sub.BaseDescription())
	}
	if sub.SubcommandGroupDescription() != "No Description." {
		t.Fatalf("SubcommandGroupDescription = %q", sub.SubcommandGroupDescription())
	}
	if sub.Description() != "No description" {
		t.Fatalf("Description = %q", sub.Description())
	}
	if len(sub.AllowedGuildIDs()) != 2 {
		t.Fatalf("AllowedGuildIDs = %v", sub.AllowedGuildIDs())
	}
}

func TestSubcommandAliases(t *testing.T) {
	c := &testCog{}
	tests := []struct {
		name      string
		opts      SubcommandOptions
		wantBase  string
		wantGroup string
	}{
		{"defaults", SubcommandOptions{Base: "b"}, "No Description.", "No Description."},
		{"aliases", SubcommandOptions{Base: "b", BaseDesc: "bd", SubGroupDesc: "gd"}, "bd", "gd"},
		{"full names win", SubcommandOptions{
			Base: "b", BaseDescription: "full", BaseDesc: "alias",
			SubcommandGroupDescription: "gfull", SubGroupDesc: "galias",
		}, "full", "gfull"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := MustSubcommand(c.GroupSay, tt.opts)
			if s.BaseDescription() != tt.wantBase || s.SubcommandGroupDescription() != tt.wantGroup {
				t.Fatalf("got %q/%q, want %q/%q", s.BaseDescription(), s.SubcommandGroupDescription(), tt.wantBase, tt.wantGroup)
			}
			if s.Name() != "group_say" {
				t.Fatalf("Name = %q", s.Name())
			}
		})
	}
}

func TestSubcommandMissingBase(t *testing.T) {
	c := &testCog{}
	if _, err := Subcommand(c.GroupSay, SubcommandOptions{Name: "say"}); !errors.Is(err, ErrMissingBase) {
		t.Fatalf("err = %v, want ErrMissingBase", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("MustSubcommand should panic")
		}
	}()
	MustSubcommand(c.GroupSay, SubcommandOptions{})
}

func TestInvoke(t *testing.T) {
	c := &testCog{}
	cmd := MustSlash(c.GroupSay, SlashOptions{})
	if err := cmd.Invoke(nil, map[string]interface{}{"text": "hi", "times": float64(2)}); err != nil {
		t.Fatal(err)
	}
	args, ok := c.got.(sayArgs)
	if !ok || args.Text != "hi" || args.Times == nil || *args.Times != 2 {
		t.Fatalf("handler got %#v", c.got)
	}

	raw := MustSlash(c.Raw, SlashOptions{Name: "raw", Options: []*discordgo.ApplicationCommandOption{}})
	if err := raw.Invoke(nil, map[string]interface{}{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if values, ok := c.got.(map[string]interface{}); !ok || values["a"] != 1 {
		t.Fatalf("raw handler got %#v", c.got)
	}

	if err := cmd.Invoke(nil, map[string]interface{}{"times": "many"}); err == nil {
		t.Fatal("expected bind error")
	}
}

func TestFuncIsTheHandler(t *testing.T) {
	c := &testCog{}
	cmd := MustSlash(c.GroupSay, SlashOptions{})
	fn, ok := cmd.Func().(func(*model.Context, sayArgs) error)
	if !ok {
		t.Fatalf("Func has type %T", cmd.Func())
	}
	if err := fn(nil, sayArgs{Text: "direct"}); err != nil || c.got.(sayArgs).Text != "direct" {
		t.Fatal("Func should call the original handler")
	}
}

package model

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type fakeResponder struct {
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	err       error
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	if f.err != nil {
		return f.err
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.followups = append(f.followups, data)
	return &discordgo.Message{Content: data.Content}, nil
}

func TestNewContextAuthor(t *testing.T) {
	member := &discordgo.Interaction{
		GuildID:   "g",
		ChannelID: "c",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "m"}},
	}
	if ctx := NewContext(nil, nil, member); ctx.Author.ID != "m" || ctx.GuildID != "g" || ctx.ChannelID != "c" {
		t.Fatalf("guild context = %+v", ctx)
	}

	dm := &discordgo.Interaction{User: &discordgo.User{ID: "u"}}
	if ctx := NewContext(nil, nil, dm); ctx.Author.ID != "u" {
		t.Fatalf("DM author = %+v", ctx.Author)
	}
}

func TestContextSendThenFollowup(t *testing.T) {
	r := &fakeResponder{}
	ctx := NewContext(nil, r, &discordgo.Interaction{})

	if err := ctx.Send("first"); err != nil {
		t.Fatal(err)
	}
	if err := ctx.SendEphemeral("second"); err != nil {
		t.Fatal(err)
	}

	if len(r.responses) != 1 || r.responses[0].Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Fatalf("responses = %+v", r.responses)
	}
	if r.responses[0].Data.Content != "first" {
		t.Fatalf("content = %q", r.responses[0].Data.Content)
	}
	if len(r.followups) != 1 || r.followups[0].Content != "second" || r.followups[0].Flags != discordgo.MessageFlagsEphemeral {
		t.Fatalf("followups = %+v", r.followups)
	}
	if !ctx.Responded() || ctx.Deferred() {
		t.Fatal("context should be responded, not deferred")
	}
}

func TestContextDefer(t *testing.T) {
	r := &fakeResponder{}
	ctx := NewContext(nil, r, &discordgo.Interaction{})
	if err := ctx.Defer(true); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Defer(false); err != nil {
		t.Fatal(err)
	}
	if len(r.responses) != 1 || r.responses[0].Type != discordgo.InteractionResponseDeferredChannelMessageWithSource {
		t.Fatalf("responses = %+v", r.responses)
	}
	if r.responses[0].Data == nil || r.responses[0].Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Fatal("ephemeral defer should set the flag")
	}
	if !ctx.Deferred() {
		t.Fatal("context should be deferred")
	}
	if err := ctx.Send("done"); err != nil || len(r.followups) != 1 {
		t.Fatalf("send after defer: err=%v followups=%d", err, len(r.followups))
	}
}

func TestContextErrors(t *testing.T) {
	if err := NewContext(nil, nil, nil).Send("x"); !errors.Is(err, ErrNoResponder) {
		t.Fatalf("err = %v, want ErrNoResponder", err)
	}

	boom := errors.New("boom")
	ctx := NewContext(nil, &fakeResponder{err: boom}, &discordgo.Interaction{})
	if err := ctx.Send("x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if ctx.Responded() {
		t.Fatal("failed response must not mark the context responded")
	}
}

func TestDescriptors(t *testing.T) {
	opts := []*discordgo.ApplicationCommandOption{{Name: "text", Type: discordgo.ApplicationCommandOptionString}}
	guilds := []string{"1"}
	var called map[string]interface{}
	cmd := NewCommandObject(CommandData{
		Name:     "echo",
		GuildIDs: guilds,
		Options:  opts,
		Invoke: func(_ *Context, values map[string]interface{}) error {
			called = values
			return nil
		},
	})

	guilds[0] = "changed"
	opts[0].Name = "changed"
	if cmd.AllowedGuildIDs()[0] != "1" || cmd.Options()[0].Name != "text" {
		t.Fatal("descriptor must copy its inputs")
	}
	cmd.Options()[0].Name = "mutated"
	if cmd.Options()[0].Name != "text" {
		t.Fatal("Options must return a copy")
	}

	if err := cmd.Invoke(nil, map[string]interface{}{"text": "hi"}); err != nil || called["text"] != "hi" {
		t.Fatalf("Invoke: err=%v values=%v", err, called)
	}
	if err := NewCommandObject(CommandData{Name: "x"}).Invoke(nil, nil); !errors.Is(err, ErrNoHandler) {
		t.Fatalf("err = %v, want ErrNoHandler", err)
	}

	empty := NewCommandObject(CommandData{Options: []*discordgo.ApplicationCommandOption{}})
	if empty.Options() == nil {
		t.Fatal("empty options must stay non-nil")
	}
	if NewCommandObject(CommandData{}).Options() != nil {
		t.Fatal("nil options must stay nil")
	}
}

func TestSubcommandKey(t *testing.T) {
	s := NewSubcommandObject(SubcommandData{Base: "info", Name: "user"})
	if s.Key() != "info user" {
		t.Fatalf("Key = %q", s.Key())
	}
	g := NewSubcommandObject(SubcommandData{Base: "info", SubcommandGroup: "member", Name: "user"})
	if g.Key() != "info member user" {
		t.Fatalf("Key = %q", g.Key())
	}
	if err := g.Invoke(nil, nil); !errors.Is(err, ErrNoHandler) {
		t.Fatalf("err = %v, want ErrNoHandler", err)
	}
}

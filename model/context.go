package model

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// ErrNoResponder is returned by the Context reply helpers when the context
// was built without a way to answer the interaction.
var ErrNoResponder = errors.New("context has no responder")

// Responder is the part of *discordgo.Session used to answer interactions.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Context is what a slash command handler receives.
type Context struct {
	Session     *discordgo.Session
	Interaction *discordgo.Interaction

	Name            string
	SubcommandName  string
	SubcommandGroup string
	GuildID         string
	ChannelID       string
	Author          *discordgo.User

	// Options holds the converted option values keyed by option name.
	Options map[string]interface{}

	responder Responder
	responded bool
	deferred  bool
}

// NewContext builds a context for interaction i. r answers the interaction;
// pass the session itself outside of tests.
func NewContext(s *discordgo.Session, r Responder, i *discordgo.Interaction) *Context {
	ctx := &Context{
		Session:     s,
		Interaction: i,
		Options:     map[string]interface{}{},
		responder:   r,
	}
	if i == nil {
		return ctx
	}
	ctx.GuildID = i.GuildID
	ctx.ChannelID = i.ChannelID
	switch {
	case i.Member != nil && i.Member.User != nil:
		ctx.Author = i.Member.User
	case i.User != nil:
		ctx.Author = i.User
	}
	return ctx
}

// Responded reports whether the interaction was already answered or deferred.
func (c *Context) Responded() bool { return c.responded }

// Deferred reports whether the interaction was acknowledged with Defer.
func (c *Context) Deferred() bool { return c.deferred }

// Send answers with a plain message. The first call responds to the
// interaction, later calls post follow-up messages.
func (c *Context) Send(content string) error {
	return c.Respond(&discordgo.InteractionResponseData{Content: content})
}

// SendEphemeral is Send with a message only the invoking user can see.
func (c *Context) SendEphemeral(content string) error {
	return c.Respond(&discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// Respond answers with arbitrary response data.
func (c *Context) Respond(data *discordgo.InteractionResponseData) error {
	if c.responder == nil {
		return ErrNoResponder
	}
	if c.responded {
		_, err := c.responder.FollowupMessageCreate(c.Interaction, true, &discordgo.WebhookParams{
			Content:         data.Content,
			Embeds:          data.Embeds,
			Components:      data.Components,
			Flags:           data.Flags,
			AllowedMentions: data.AllowedMentions,
			Files:           data.Files,
		})
		return err
	}
	err := c.responder.InteractionRespond(c.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return err
	}
	c.responded = true
	return nil
}

// Defer acknowledges the interaction so the handler can answer later with
// follow-up messages.
func (c *Context) Defer(ephemeral bool) error {
	if c.responder == nil {
		return ErrNoResponder
	}
	if c.responded {
		return nil
	}
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := c.responder.InteractionRespond(c.Interaction, resp); err != nil {
		return err
	}
	c.responded = true
	c.deferred = true
	return nil
}

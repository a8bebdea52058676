package utils

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/a04k/cogslash/model"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrNotStruct is returned when a handler argument type is not a struct.
	ErrNotStruct = errors.New("handler argument must be a struct")
	// ErrInvalidChoice is returned when a choices tag value does not parse
	// as the option's type.
	ErrInvalidChoice = errors.New("invalid choice value")
)

const noOptionDescription = "No Description."

var (
	userType        = reflect.TypeOf((*discordgo.User)(nil))
	memberType      = reflect.TypeOf((*discordgo.Member)(nil))
	channelType     = reflect.TypeOf((*discordgo.Channel)(nil))
	roleType        = reflect.TypeOf((*discordgo.Role)(nil))
	mentionableType = reflect.TypeOf(model.Mentionable{})
)

// OptionType maps a Go type to the slash option type used for it. Types
// without a dedicated option type are sent as strings.
func OptionType(t reflect.Type) discordgo.ApplicationCommandOptionType {
	switch t {
	case userType, memberType:
		return discordgo.ApplicationCommandOptionUser
	case channelType:
		return discordgo.ApplicationCommandOptionChannel
	case roleType:
		return discordgo.ApplicationCommandOptionRole
	case mentionableType, reflect.PointerTo(mentionableType):
		return discordgo.ApplicationCommandOptionMentionable
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return discordgo.ApplicationCommandOptionBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return discordgo.ApplicationCommandOptionInteger
	case reflect.Float32, reflect.Float64:
		return discordgo.ApplicationCommandOptionNumber
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

// CreateOption builds a single slash option.
func CreateOption(name, description string, typ discordgo.ApplicationCommandOptionType, required bool, choices ...*discordgo.ApplicationCommandOptionChoice) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        typ,
		Name:        name,
		Description: description,
		Required:    required,
		Choices:     choices,
	}
}

// CreateChoice builds an option choice.
func CreateChoice(name string, value interface{}) *discordgo.ApplicationCommandOptionChoice {
	return &discordgo.ApplicationCommandOptionChoice{Name: name, Value: value}
}

// field is one struct field exposed as a slash option.
type field struct {
	index    []int
	name     string
	desc     string
	optional bool
	choices  []string
	typ      reflect.Type
}

// fields lists the option fields of struct type t in declaration order.
// Untagged anonymous struct fields are flattened.
func fields(t reflect.Type) ([]field, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %s", ErrNotStruct, t)
	}

	var out []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, hasTag := sf.Tag.Lookup("slash")
		if tag == "-" {
			continue
		}
		if sf.Anonymous && !hasTag && sf.Type.Kind() == reflect.Struct && sf.Type != mentionableType {
			nested, err := fields(sf.Type)
			if err != nil {
				return nil, err
			}
			for _, f := range nested {
				f.index = append([]int{i}, f.index...)
				out = append(out, f)
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}

		f := field{index: []int{i}, typ: sf.Type, desc: sf.Tag.Get("desc")}
		parts := strings.Split(tag, ",")
		f.name = strings.TrimSpace(parts[0])
		if f.name == "" {
			f.name = CommandName(sf.Name)
		}
		for _, p := range parts[1:] {
			if strings.TrimSpace(p) == "optional" {
				f.optional = true
			}
		}
		if sf.Type.Kind() == reflect.Ptr && isScalar(sf.Type.Elem()) {
			f.optional = true
		}
		if c := sf.Tag.Get("choices"); c != "" {
			for _, v := range strings.Split(c, ",") {
				if v = strings.TrimSpace(v); v != "" {
					f.choices = append(f.choices, v)
				}
			}
		}
		out = append(out, f)
	}
	return out, nil
}

func isScalar(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String, reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// GenerateOptions derives the option list of a handler from its argument
// struct. Every option gets description unless the field carries a desc tag.
// Required options come first, otherwise in field order, since Discord
// rejects a required option after an optional one.
func GenerateOptions(t reflect.Type, description string) ([]*discordgo.ApplicationCommandOption, error) {
	fs, err := fields(t)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = noOptionDescription
	}

	options := make([]*discordgo.ApplicationCommandOption, 0, len(fs))
	for _, f := range fs {
		desc := f.desc
		if desc == "" {
			desc = description
		}
		typ := OptionType(f.typ)
		var choices []*discordgo.ApplicationCommandOptionChoice
		for _, c := range f.choices {
			v, err := choiceValue(typ, c)
			if err != nil {
				return nil, fmt.Errorf("option %q: %w", f.name, err)
			}
			choices = append(choices, CreateChoice(c, v))
		}
		options = append(options, CreateOption(f.name, desc, typ, !f.optional, choices...))
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Required && !options[j].Required
	})
	return options, nil
}

func choiceValue(typ discordgo.ApplicationCommandOptionType, raw string) (interface{}, error) {
	switch typ {
	case discordgo.ApplicationCommandOptionInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidChoice, raw)
		}
		return n, nil
	case discordgo.ApplicationCommandOptionNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidChoice, raw)
		}
		return f, nil
	}
	return raw, nil
}

// Bind assigns values to the option fields of the struct dst points to.
// Values without a matching field are ignored.
func Bind(dst interface{}, values map[string]interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("bind: destination must be a non-nil pointer, got %T", dst)
	}
	rv = rv.Elem()
	fs, err := fields(rv.Type())
	if err != nil {
		return err
	}
	for _, f := range fs {
		v, ok := values[f.name]
		if !ok || v == nil {
			continue
		}
		if err := assign(rv.FieldByIndex(f.index), v); err != nil {
			return fmt.Errorf("option %q: %w", f.name, err)
		}
	}
	return nil
}

func assign(dst reflect.Value, v interface{}) error {
	switch dst.Type() {
	case userType:
		switch x := v.(type) {
		case *discordgo.User:
			dst.Set(reflect.ValueOf(x))
			return nil
		case *discordgo.Member:
			dst.Set(reflect.ValueOf(x.User))
			return nil
		case string:
			dst.Set(reflect.ValueOf(&discordgo.User{ID: x}))
			return nil
		}
	case memberType:
		switch x := v.(type) {
		case *discordgo.Member:
			dst.Set(reflect.ValueOf(x))
			return nil
		case *discordgo.User:
			dst.Set(reflect.ValueOf(&discordgo.Member{User: x}))
			return nil
		case string:
			dst.Set(reflect.ValueOf(&discordgo.Member{User: &discordgo.User{ID: x}}))
			return nil
		}
	case channelType:
		if s, ok := v.(string); ok {
			dst.Set(reflect.ValueOf(&discordgo.Channel{ID: s}))
			return nil
		}
	case roleType:
		if s, ok := v.(string); ok {
			dst.Set(reflect.ValueOf(&discordgo.Role{ID: s}))
			return nil
		}
	case mentionableType, reflect.PointerTo(mentionableType):
		// Without resolved data the ID cannot tell a user from a role.
		if s, ok := v.(string); ok {
			m := model.Mentionable{User: &discordgo.User{ID: s}}
			if dst.Kind() == reflect.Ptr {
				dst.Set(reflect.ValueOf(&m))
			} else {
				dst.Set(reflect.ValueOf(m))
			}
			return nil
		}
	}

	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	if dst.Kind() == reflect.Ptr && (isScalar(dst.Type().Elem()) || src.Type().AssignableTo(dst.Type().Elem())) {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	if isScalar(dst.Type()) && isScalar(src.Type()) && numeric(dst.Kind()) == numeric(src.Kind()) && src.Type().ConvertibleTo(dst.Type()) {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	if dst.Kind() == reflect.String {
		dst.SetString(fmt.Sprint(v))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String:
		return false
	}
	return true
}

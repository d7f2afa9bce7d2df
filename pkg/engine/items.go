package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/conditionals"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

var (
	itemFillers   = []string{"use", "take", "pick", "up", "grab", "drink", "eat", "the", "a", "an", "some"}
	targetMarkers = []string{" on ", " with ", " at "}
)

func (e *Engine) handleItem(input string, m *world.Model, ps *state.PlayerState) outcome {
	if world.ContainsAny(input, takeVerbs...) {
		return e.take(input, m, ps)
	}
	return e.use(input, m, ps)
}

func (e *Engine) take(input string, m *world.Model, ps *state.PlayerState) outcome {
	room := ps.CurrentRoom
	visible := slices.DeleteFunc(m.RoomItems(room), m.IsHidden)

	it, ok := m.FindItem(input, visible)
	if !ok {
		if held, ok := m.FindItem(input, ps.Inventory); ok {
			return outcome{narrative: fmt.Sprintf("You already have the %s.", held.Name), miss: true}
		}
		return outcome{
			narrative: fmt.Sprintf("You don't see any %s here.", e.echo(stripFillers(input))),
			actions:   []string{"look around", "search for hidden items"},
			miss:      true,
		}
	}
	if err := m.TakeItem(room, it.ID, ps); err != nil {
		e.log.Error("failed to take visible item", "item", it.ID, "error", err)
		return outcome{narrative: "It slips out of your grasp.", miss: true}
	}
	ps.PassTime(1)
	e.log.Debug("item taken", "item", it.ID, "room", room)

	narrative := fmt.Sprintf("You take the %s. %s", it.Name, it.Description)
	if it.Cursed && ps.Awareness >= 2 {
		narrative += " Something about it feels wrong."
	}
	return outcome{narrative: narrative, actions: itemActions(it, m, ps)}
}

func (e *Engine) use(input string, m *world.Model, ps *state.PlayerState) outcome {
	object, target := splitTarget(input)

	candidates := append(slices.Clone(ps.Inventory), slices.DeleteFunc(m.RoomItems(ps.CurrentRoom), m.IsHidden)...)
	it, ok := m.FindItem(object, candidates)
	if !ok {
		return outcome{
			narrative: fmt.Sprintf("You don't have any %s to use.", e.echo(stripFillers(object))),
			actions:   []string{"inventory"},
			miss:      true,
		}
	}

	if target != "" {
		for _, rule := range m.World().UseRules {
			if rule.Item != it.ID || (rule.Room != "" && rule.Room != ps.CurrentRoom) {
				continue
			}
			if !world.ContainsAny(target, rule.Targets...) || !conditionals.Satisfied(rule.Requires, ps) {
				continue
			}
			return e.applyUseRule(rule, it, m, ps)
		}
	}

	drinking := world.ContainsAny(input, consumeVerbs...)
	if it.Category == world.ItemConsumable && (drinking || target == "") {
		return e.consume(it, drinking, m, ps)
	}
	if drinking {
		return outcome{narrative: fmt.Sprintf("You can't consume the %s.", it.Name), miss: true}
	}
	if target == "" {
		return outcome{
			narrative: fmt.Sprintf("You turn the %s over in your hands. You're not sure how to use it on its own.", it.Name),
			actions:   itemActions(it, m, ps),
			miss:      true,
		}
	}
	return outcome{narrative: fmt.Sprintf("You're not sure how to use the %s on that.", it.Name), actions: itemActions(it, m, ps), miss: true}
}

func (e *Engine) applyUseRule(rule world.UseRule, it *world.Item, m *world.Model, ps *state.PlayerState) outcome {
	if err := m.ApplyEffects(rule.Effects, ps); err != nil {
		e.log.Error("failed to apply use rule", "item", it.ID, "error", err)
	}
	narrative := rule.Narrative
	if it.Cursed {
		narrative += e.applyCurse(it, m, ps)
	}
	if rule.Consume {
		e.removeItem(it, m, ps)
	}
	ps.PassTime(1)
	ps.LogEncounter("use:" + it.ID)
	return outcome{narrative: narrative}
}

func (e *Engine) consume(it *world.Item, drinking bool, m *world.Model, ps *state.PlayerState) outcome {
	verb := "use"
	if drinking {
		verb = "consume"
	}
	if err := m.ApplyEffects(it.OnConsume, ps); err != nil {
		e.log.Error("failed to apply consumable", "item", it.ID, "error", err)
	}
	narrative := fmt.Sprintf("You %s the %s.", verb, it.Name)
	if it.Cursed {
		narrative += e.applyCurse(it, m, ps)
	}
	e.removeItem(it, m, ps)
	ps.LogEncounter("consume:" + it.ID)
	return outcome{narrative: narrative}
}

func (e *Engine) applyCurse(it *world.Item, m *world.Model, ps *state.PlayerState) string {
	if len(it.Curse) == 0 {
		return ""
	}
	if err := m.ApplyEffects(it.Curse, ps); err != nil {
		e.log.Error("failed to apply curse", "item", it.ID, "error", err)
	}
	e.log.Debug("curse applied", "item", it.ID)
	return fmt.Sprintf(" The %s's curse bites.", it.Name)
}

// removeItem destroys a used-up item wherever the player had it.
func (e *Engine) removeItem(it *world.Item, m *world.Model, ps *state.PlayerState) {
	if ps.RemoveItem(it.ID) {
		return
	}
	if err := m.TakeItem(ps.CurrentRoom, it.ID, ps); err != nil {
		e.log.Error("failed to remove used item", "item", it.ID, "error", err)
		return
	}
	ps.RemoveItem(it.ID)
}

// splitTarget splits "use x on y" into its object and target phrases.
func splitTarget(input string) (object, target string) {
	padded := " " + input + " "
	for _, marker := range targetMarkers {
		if i := strings.Index(padded, marker); i >= 0 {
			return strings.TrimSpace(padded[:i]), strings.TrimSpace(padded[i+len(marker):])
		}
	}
	return input, ""
}

func stripFillers(input string) string {
	words := slices.DeleteFunc(strings.Fields(input), func(w string) bool {
		return slices.Contains(itemFillers, w)
	})
	if len(words) == 0 {
		return "such thing"
	}
	return strings.Join(words, " ")
}

// echo repeats player text back as typed, filtered for the content rating.
func (e *Engine) echo(text string) string {
	return e.filter.Clean(text)
}

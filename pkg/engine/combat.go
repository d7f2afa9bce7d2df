package engine

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// handleCombat resolves one exchange of blows: the player swings, and a
// surviving enemy swings back. Dice come from a d20 roller seeded by the
// session RNG, so a replayed session rolls the same numbers.
func (e *Engine) handleCombat(input string, room *world.Room, m *world.Model, ps *state.PlayerState) outcome {
	living := m.LivingEnemies(room.ID)
	if len(living) == 0 {
		return outcome{narrative: "There is nothing here to fight. Your fists close on empty air.", actions: room.Actions, miss: true}
	}
	enemy := living[0]
	bestScore := 0
	for _, en := range living {
		if s := world.MatchScore(input, en.Name, en.ID, en.Keywords); s > bestScore {
			enemy, bestScore = en, s
		}
	}

	weapon := equippedWeapon(m, ps)
	foe, err := enemy.Actor(m.EnemyHP(enemy.ID))
	if err == nil {
		var hero *d20.Actor
		if hero, err = playerActor(ps, weapon); err == nil {
			return e.exchange(hero, foe, enemy, weapon, room, m, ps)
		}
	}
	e.log.Error("failed to build combat stat blocks", "enemy", enemy.ID, "error", err)
	return outcome{narrative: fmt.Sprintf("The %s flickers and will not hold still long enough to strike.", enemy.Name), miss: true}
}

func (e *Engine) exchange(hero, foe *d20.Actor, enemy *world.Enemy, weapon *world.Item, room *world.Room, m *world.Model, ps *state.PlayerState) outcome {
	roller := d20.NewRoller(int64(e.rng.Uint64()))
	var b strings.Builder
	ps.PassTime(1)

	strike, err := hero.AttackRoll(roller).Roll()
	if err != nil {
		e.log.Error("attack roll failed", "error", err)
		return outcome{narrative: "Your hands shake too badly to fight.", miss: true}
	}
	e.log.Debug("player attack", "enemy", enemy.ID, "roll", strike.Detail, "ac", foe.AC())

	if strike.Value >= foe.AC() {
		dmg, err := roller.Roll(playerDamage(weapon))
		if err != nil {
			e.log.Error("damage roll failed", "error", err)
			return outcome{narrative: "Your blow lands without force."}
		}
		foe.SubHP(dmg.Value)
		m.DamageEnemy(enemy.ID, dmg.Value)
		if weapon != nil {
			fmt.Fprintf(&b, "You strike the %s with the %s for %d damage.", enemy.Name, weapon.Name, dmg.Value)
		} else {
			fmt.Fprintf(&b, "You strike the %s for %d damage.", enemy.Name, dmg.Value)
		}
		if foe.IsKnockedOut() {
			b.WriteString(" " + e.defeat(enemy, room, m, ps))
			e.log.Info("enemy defeated", "enemy", enemy.ID)
			return outcome{narrative: b.String(), actions: mergeActions(room.Actions, exitActions(room, m, ps)...)}
		}
	} else {
		fmt.Fprintf(&b, "You swing at the %s and miss.", enemy.Name)
	}

	reply, err := foe.AttackRoll(roller).Roll()
	if err != nil {
		e.log.Error("enemy attack roll failed", "enemy", enemy.ID, "error", err)
		reply = d20.RollOutcome{}
	}
	if reply.Value >= hero.AC() {
		hit, err := roller.Roll(enemy.Damage)
		if err != nil {
			e.log.Error("enemy damage roll failed", "enemy", enemy.ID, "error", err)
		}
		taken := ps.Damage(max(1, hit.Value))
		fmt.Fprintf(&b, " The %s strikes back, and you lose %d health.", enemy.Name, taken)
		if enemy.FearFactor > ps.Fear {
			ps.RaiseFear(1)
		}
	} else {
		fmt.Fprintf(&b, " The %s lunges and misses.", enemy.Name)
	}
	actions := append([]string{"attack " + strings.ToLower(enemy.Name)}, exitActions(room, m, ps)...)
	return outcome{narrative: b.String(), actions: actions}
}

// playerActor is the player's side of a fight. A carried weapon is a combat
// modifier on the attack roll.
func playerActor(ps *state.PlayerState, weapon *world.Item) (*d20.Actor, error) {
	b := d20.NewActor("player").WithHP(state.MaxHealth).WithAC(playerAC)
	if weapon != nil {
		b = b.WithCombatModifier(weapon.ID, weaponBonus)
	}
	hero, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := hero.SetHP(ps.Health); err != nil {
		return nil, err
	}
	return hero, nil
}

// playerDamage is the dice notation for a player's hit.
func playerDamage(weapon *world.Item) string {
	if weapon == nil {
		return unarmedDamage
	}
	return fmt.Sprintf("%s+%d", unarmedDamage, weaponBonus)
}

func equippedWeapon(m *world.Model, ps *state.PlayerState) *world.Item {
	for _, id := range ps.Inventory {
		if it, err := m.GetItem(id); err == nil && it.Category == world.ItemWeapon {
			return it
		}
	}
	return nil
}

func (e *Engine) defeat(enemy *world.Enemy, room *world.Room, m *world.Model, ps *state.PlayerState) string {
	narrative := enemy.DefeatNarrative
	if narrative == "" {
		narrative = fmt.Sprintf("The %s collapses and is still.", enemy.Name)
	}
	for _, id := range enemy.Loot {
		placed, err := m.PlaceItem(room.ID, id, ps)
		if err != nil {
			e.log.Error("failed to drop loot", "enemy", enemy.ID, "item", id, "error", err)
			continue
		}
		if placed {
			if it, err := m.GetItem(id); err == nil {
				narrative += fmt.Sprintf(" It leaves behind %s.", strings.ToLower(it.Name))
			}
		}
	}
	ps.LogEncounter("defeat:" + enemy.ID)
	ps.AdvanceStory(1)
	return narrative
}

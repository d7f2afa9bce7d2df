package world

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jwebster45206/adventure-engine/pkg/conditionals"
)

const (
	MinHorrorLevel = 1
	MaxHorrorLevel = 10
)

// Validate checks the world for structural problems and reports all of them
// in a single *ValidationError.
func (w *World) Validate() error {
	v := &validator{w: w}
	v.run()
	if len(v.problems) > 0 {
		return &ValidationError{WorldID: w.ID, Problems: v.problems}
	}
	return nil
}

type validator struct {
	w        *World
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) run() {
	w := v.w
	if w.ID == "" {
		v.addf("world id is required")
	}
	if len(w.Rooms) == 0 {
		v.addf("world has no rooms")
		return
	}
	if _, ok := w.Rooms[w.StartRoom]; !ok {
		v.addf("start_room %q does not exist", w.StartRoom)
	}

	v.checkKeys()
	v.checkRooms()
	v.checkItems()
	v.checkPuzzles()
	v.checkNPCs()
	v.checkSecrets()
	v.checkEnemies()
	v.checkBooks()
	v.checkUseRules()
	for tag, effects := range sortedMap(w.ContentUnlocks) {
		v.checkEffects("content unlock "+tag, effects)
	}
	for _, t := range w.Topics {
		if t.Name == "" || len(t.Keywords) == 0 {
			v.addf("topic %q needs a name and keywords", t.Name)
		}
	}

	if len(v.problems) == 0 {
		v.checkReachability()
	}
}

func (v *validator) checkKeys() {
	w := v.w
	for id, r := range sortedMap(w.Rooms) {
		if r.ID != id {
			v.addf("room key %q does not match id %q", id, r.ID)
		}
	}
	for id, p := range sortedMap(w.Puzzles) {
		if p.ID != id {
			v.addf("puzzle key %q does not match id %q", id, p.ID)
		}
	}
	for id, it := range sortedMap(w.Items) {
		if it.ID != id {
			v.addf("item key %q does not match id %q", id, it.ID)
		}
	}
	for id, n := range sortedMap(w.NPCs) {
		if n.ID != id {
			v.addf("npc key %q does not match id %q", id, n.ID)
		}
	}
	for id, s := range sortedMap(w.Secrets) {
		if s.ID != id {
			v.addf("secret key %q does not match id %q", id, s.ID)
		}
	}
	for id, e := range sortedMap(w.Enemies) {
		if e.ID != id {
			v.addf("enemy key %q does not match id %q", id, e.ID)
		}
	}
}

func (v *validator) checkRooms() {
	w := v.w
	placed := make(map[string]string)
	for id, r := range sortedMap(w.Rooms) {
		if r.HorrorLevel < MinHorrorLevel || r.HorrorLevel > MaxHorrorLevel {
			v.addf("room %s: horror_level %d out of range %d-%d", id, r.HorrorLevel, MinHorrorLevel, MaxHorrorLevel)
		}
		for _, c := range r.Connections {
			if _, ok := w.Rooms[c]; !ok {
				v.addf("room %s: connection to unknown room %q", id, c)
			}
		}
		for _, it := range r.RequiredItems {
			if _, ok := w.Items[it]; !ok {
				v.addf("room %s: required item %q does not exist", id, it)
			}
		}
		for _, it := range r.Items {
			item, ok := w.Items[it]
			if !ok {
				v.addf("room %s: item %q does not exist", id, it)
				continue
			}
			if other, dup := placed[it]; dup {
				v.addf("item %s is placed in both %s and %s", it, other, id)
			}
			placed[it] = id
			if item.Room != id {
				v.addf("room %s lists item %s but the item belongs to %q", id, it, item.Room)
			}
		}
		for _, p := range r.Puzzles {
			puzzle, ok := w.Puzzles[p]
			if !ok {
				v.addf("room %s: puzzle %q does not exist", id, p)
			} else if puzzle.Room != id {
				v.addf("room %s lists puzzle %s but the puzzle belongs to %q", id, p, puzzle.Room)
			}
		}
		for _, n := range r.NPCs {
			if _, ok := w.NPCs[n]; !ok {
				v.addf("room %s: npc %q does not exist", id, n)
			}
		}
		for _, s := range r.Secrets {
			if _, ok := w.Secrets[s]; !ok {
				v.addf("room %s: secret %q does not exist", id, s)
			}
		}
		for _, e := range r.Enemies {
			enemy, ok := w.Enemies[e]
			if !ok {
				v.addf("room %s: enemy %q does not exist", id, e)
			} else if enemy.Room != id {
				v.addf("room %s lists enemy %s but the enemy belongs to %q", id, e, enemy.Room)
			}
		}
		for _, f := range r.Features {
			if len(f.Keywords) == 0 {
				v.addf("room %s: feature without keywords", id)
			}
			if f.SolvedBy != "" {
				if _, ok := w.Puzzles[f.SolvedBy]; !ok {
					v.addf("room %s: feature solved_by unknown puzzle %q", id, f.SolvedBy)
				}
			}
		}
	}
	for id, it := range sortedMap(w.Items) {
		if it.Room != "" && placed[id] != it.Room {
			v.addf("item %s claims room %q but is not listed there", id, it.Room)
		}
	}
}

func (v *validator) checkItems() {
	for id, it := range sortedMap(v.w.Items) {
		if it.Name == "" {
			v.addf("item %s: name is required", id)
		}
		v.checkEffects("item "+id+" curse", it.Curse)
		v.checkEffects("item "+id+" on_consume", it.OnConsume)
		if len(it.OnConsume) > 0 && it.Category != ItemConsumable {
			v.addf("item %s: on_consume set on a %s item", id, it.Category)
		}
	}
}

func (v *validator) checkPuzzles() {
	for id, p := range sortedMap(v.w.Puzzles) {
		if _, ok := v.w.Rooms[p.Room]; !ok {
			v.addf("puzzle %s: room %q does not exist", id, p.Room)
		} else if !slices.Contains(v.w.Rooms[p.Room].Puzzles, id) {
			v.addf("puzzle %s: not listed in room %s", id, p.Room)
		}
		if p.Solution.IsEmpty() {
			v.addf("puzzle %s: solution matcher is empty", id)
		}
		if p.MaxAttempts < 0 {
			v.addf("puzzle %s: max_attempts must not be negative", id)
		}
		for _, it := range p.RequiredItems {
			if _, ok := v.w.Items[it]; !ok {
				v.addf("puzzle %s: required item %q does not exist", id, it)
			}
		}
		for _, tag := range p.Solution.RequiresKnowledge {
			if _, ok := v.w.Books[tag]; !ok {
				v.addf("puzzle %s: knowledge %q is not granted by any book", id, tag)
			}
		}
		v.checkEffects("puzzle "+id, p.Consequences)
	}
}

func (v *validator) checkNPCs() {
	for id, n := range sortedMap(v.w.NPCs) {
		if !slices.Contains(moodScale, n.Mood) {
			v.addf("npc %s: unknown mood %q", id, n.Mood)
		}
		if len(n.Dialogue) == 0 {
			v.addf("npc %s: dialogue table is empty", id)
		}
		for topic, lines := range n.Dialogue {
			if len(lines) == 0 {
				v.addf("npc %s: topic %q has no lines", id, topic)
			}
		}
		for _, tier := range n.KnowledgeDialogue {
			if tier.Knowledge == "" {
				v.addf("npc %s: dialogue tier without knowledge flag", id)
			}
			for topic, lines := range tier.Dialogue {
				if len(lines) == 0 {
					v.addf("npc %s: tier %s topic %q has no lines", id, tier.Knowledge, topic)
				}
			}
		}
	}
}

func (v *validator) checkSecrets() {
	for id, s := range sortedMap(v.w.Secrets) {
		if s.Requirements.IsEmpty() {
			v.addf("secret %s: requirements are empty and it could never be revealed", id)
		}
		v.checkRequirement("secret "+id, s.Requirements)
		v.checkEffects("secret "+id, s.Consequences)
	}
}

func (v *validator) checkEnemies() {
	w := v.w
	for id, e := range sortedMap(w.Enemies) {
		if _, ok := w.Rooms[e.Room]; !ok {
			v.addf("enemy %s: room %q does not exist", id, e.Room)
		} else if !slices.Contains(w.Rooms[e.Room].Enemies, id) {
			v.addf("enemy %s: not listed in room %s", id, e.Room)
		}
		if e.MaxHP <= 0 {
			v.addf("enemy %s: max_hp must be positive", id)
		}
		if _, err := e.Actor(e.MaxHP); err != nil {
			v.addf("enemy %s: %v", id, err)
		}
		for _, it := range e.Loot {
			item, ok := w.Items[it]
			if !ok {
				v.addf("enemy %s: loot item %q does not exist", id, it)
			} else if item.Room != "" {
				v.addf("enemy %s: loot item %s is already placed in %s", id, it, item.Room)
			}
		}
	}
}

func (v *validator) checkBooks() {
	for tag, b := range sortedMap(v.w.Books) {
		if _, ok := v.w.Items[b.Item]; !ok {
			v.addf("book %s: item %q does not exist", tag, b.Item)
		}
		if b.Narrative == "" {
			v.addf("book %s: narrative is required", tag)
		}
	}
}

func (v *validator) checkUseRules() {
	for i, r := range v.w.UseRules {
		where := fmt.Sprintf("use rule %d (%s)", i, r.Item)
		if _, ok := v.w.Items[r.Item]; !ok {
			v.addf("%s: item does not exist", where)
		}
		if len(r.Targets) == 0 {
			v.addf("%s: targets are required", where)
		}
		if r.Room != "" {
			if _, ok := v.w.Rooms[r.Room]; !ok {
				v.addf("%s: room %q does not exist", where, r.Room)
			}
		}
		if r.Requires != nil {
			v.checkRequirement(where, *r.Requires)
		}
		v.checkEffects(where, r.Effects)
	}
}

func (v *validator) checkRequirement(where string, r conditionals.Requirement) {
	w := v.w
	for _, it := range r.Items {
		if _, ok := w.Items[it]; !ok {
			v.addf("%s: required item %q does not exist", where, it)
		}
	}
	for _, p := range r.Puzzles {
		if _, ok := w.Puzzles[p]; !ok {
			v.addf("%s: required puzzle %q does not exist", where, p)
		}
	}
	for _, s := range r.Secrets {
		if _, ok := w.Secrets[s]; !ok {
			v.addf("%s: required secret %q does not exist", where, s)
		}
	}
	if r.Room != "" {
		if _, ok := w.Rooms[r.Room]; !ok {
			v.addf("%s: required room %q does not exist", where, r.Room)
		}
	}
}

func (v *validator) checkEffects(where string, effects []Effect) {
	w := v.w
	for _, e := range effects {
		if !slices.Contains(effectKinds, e.Kind) {
			v.addf("%s: unknown effect kind %q", where, e.Kind)
			continue
		}
		switch e.Kind {
		case EffectUnlockRoom:
			if _, ok := w.Rooms[e.Room]; !ok {
				v.addf("%s: unlock_room references unknown room %q", where, e.Room)
			}
		case EffectRevealItem, EffectAddItem:
			if _, ok := w.Items[e.Item]; !ok {
				v.addf("%s: %s references unknown item %q", where, e.Kind, e.Item)
			}
			if e.Room != "" {
				if _, ok := w.Rooms[e.Room]; !ok {
					v.addf("%s: %s references unknown room %q", where, e.Kind, e.Room)
				}
			} else if e.Kind == EffectRevealItem {
				v.addf("%s: reveal_item needs a room", where)
			}
		case EffectSolvePuzzle:
			if _, ok := w.Puzzles[e.Target]; !ok {
				v.addf("%s: solve_puzzle references unknown puzzle %q", where, e.Target)
			}
		case EffectKnowledge:
			if e.Target == "" {
				v.addf("%s: knowledge effect needs a target", where)
			}
		}
	}
}

// checkReachability runs a fix-point over what a player can obtain starting
// from the start room. Rooms that can never be entered are reported.
func (v *validator) checkReachability() {
	w := v.w
	reach := map[string]bool{w.StartRoom: true}
	items := make(map[string]bool)
	knowledge := make(map[string]bool)
	unlocked := make(map[string]bool)
	fired := make(map[string]bool)

	has := func(ids []string) bool {
		for _, id := range ids {
			if !items[id] {
				return false
			}
		}
		return true
	}
	collect := func(key string, effects []Effect) bool {
		if fired[key] {
			return false
		}
		fired[key] = true
		for _, e := range effects {
			switch e.Kind {
			case EffectUnlockRoom:
				unlocked[e.Room] = true
			case EffectAddItem:
				items[e.Item] = true
			case EffectKnowledge:
				knowledge[e.Target] = true
			}
		}
		return true
	}

	for changed := true; changed; {
		changed = false
		for id := range reach {
			r := w.Rooms[id]
			for _, it := range r.Items {
				if !items[it] {
					items[it] = true
					changed = true
				}
			}
			for _, pid := range r.Puzzles {
				p := w.Puzzles[pid]
				if !has(p.RequiredItems) {
					continue
				}
				gated := false
				for _, tag := range p.Solution.RequiresKnowledge {
					if !knowledge[tag] {
						gated = true
					}
				}
				if !gated && collect("puzzle:"+pid, p.Consequences) {
					changed = true
				}
			}
			for _, eid := range r.Enemies {
				for _, it := range w.Enemies[eid].Loot {
					if !items[it] {
						items[it] = true
						changed = true
					}
				}
			}
			for _, sid := range r.Secrets {
				if collect("secret:"+sid, w.Secrets[sid].Consequences) {
					changed = true
				}
			}
		}
		for tag, b := range sortedMap(w.Books) {
			if items[b.Item] && !knowledge[tag] {
				knowledge[tag] = true
				changed = true
			}
			if knowledge[tag] && collect("unlock:"+tag, w.ContentUnlocks[tag]) {
				changed = true
			}
		}
		for i, r := range w.UseRules {
			if items[r.Item] && (r.Room == "" || reach[r.Room]) {
				if collect(fmt.Sprintf("use:%d", i), r.Effects) {
					changed = true
				}
			}
		}
		for id := range reach {
			for _, c := range w.Rooms[id].Connections {
				if reach[c] {
					continue
				}
				target := w.Rooms[c]
				if target.Unlocked || unlocked[c] || (len(target.RequiredItems) > 0 && has(target.RequiredItems)) {
					reach[c] = true
					changed = true
				}
			}
		}
	}

	for id := range sortedMap(w.Rooms) {
		if !reach[id] {
			v.addf("room %s is unreachable from %s: its unlock predicate can never be satisfied", id, w.StartRoom)
		}
	}
}

// sortedMap iterates a map in key order so problems are reported stably.
func sortedMap[V any](m map[string]V) func(yield func(string, V) bool) {
	return func(yield func(string, V) bool) {
		for _, k := range slices.Sorted(maps.Keys(m)) {
			if !yield(k, m[k]) {
				return
			}
		}
	}
}

package models

import "encoding/json"

// Normalize converts any previously stored snapshot blob into a canonical
// RootState. It is total: malformed JSON, missing fields, wrong types and
// unknown schemas all degrade to defaults rather than failing. Schema
// evolution is handled here and nowhere else; every other component may
// assume a fully valid shape.
//
// Two legacy shapes are accepted besides the current one: a flat
// single-user state with top-level points, and a users map already in the
// target shape but with older field names.
func Normalize(raw []byte) *RootState {
	var v interface{}
	if len(raw) > 0 {
		// Unmarshal errors are deliberately ignored; v stays nil.
		_ = json.Unmarshal(raw, &v)
	}
	return normalizeValue(v)
}

func normalizeValue(v interface{}) *RootState {
	m, ok := v.(map[string]interface{})
	if !ok {
		return NewRootState()
	}

	next := &RootState{
		SchemaVersion: SchemaVersion,
		Users:         map[string]*UserState{},
	}

	next.ActiveUserID = firstString(m, "active_user_id", "activeUserId", "userId", "user_id")
	if next.ActiveUserID == "" {
		next.ActiveUserID = DefaultUserID
	}

	if users, ok := m["users"].(map[string]interface{}); ok {
		for uid, u := range users {
			next.Users[uid] = normalizeUser(u)
		}
	} else {
		// Flat legacy shape: a single implicit user with top-level fields.
		next.Users[next.ActiveUserID] = normalizeUser(m)
	}

	if _, ok := next.Users[next.ActiveUserID]; !ok {
		next.Users[next.ActiveUserID] = NewUserState()
	}
	return next
}

func normalizeUser(v interface{}) *UserState {
	u := NewUserState()
	m, ok := v.(map[string]interface{})
	if !ok {
		return u
	}

	u.Points = clampInt(firstNumber(m, "points"), 0, PointsCap)
	counter := clampInt(firstNumber(m, "review_correct_since_last_point", "reviewCorrectCount", "review_correct_count"), 0, PointsCap)
	// Older snapshots let the counter run past 10 and flushed it on the next
	// correct answer. Flush here instead so the [0,9] invariant holds and no
	// carried credit is lost.
	u.Points = clampInt(u.Points+counter/10, 0, PointsCap)
	u.ReviewCorrectSinceLastPoint = counter % 10

	if words, ok := m["words"].(map[string]interface{}); ok {
		for wid, w := range words {
			u.Words[wid] = normalizeWord(w)
		}
	}
	return u
}

func normalizeWord(v interface{}) *WordProgress {
	p := NewWordProgress()
	m, ok := v.(map[string]interface{})
	if !ok {
		return p
	}

	p.Enrolled, _ = m["enrolled"].(bool)
	p.Stage = clampInt(firstNumber(m, "stage"), 0, MaxStage)
	p.Due = normalizeDay(firstString(m, "due"))
	p.LoopUntil = normalizeDay(firstString(m, "loop_until", "loopUntilDate"))
	p.SeenCount = clampInt(firstNumber(m, "seen_count", "seen"), 0, CounterCap)
	p.RememberedCount = clampInt(firstNumber(m, "remembered_count", "remembered"), 0, CounterCap)

	if !p.Enrolled {
		p.Due = ""
		p.LoopUntil = ""
	}
	return p
}

func normalizeDay(s string) Day {
	d, ok := ParseDay(s)
	if !ok {
		return ""
	}
	return d
}

// firstString returns the first key in keys whose value is a string.
func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			return s
		}
	}
	return ""
}

// firstNumber returns the first key in keys whose value is numeric,
// truncated to an int. JSON decoding yields float64; int is accepted for
// states built in code.
func firstNumber(m map[string]interface{}, keys ...string) int {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return 0
}

func clampInt(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

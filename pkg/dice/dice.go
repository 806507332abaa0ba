package dice

var defaultRoller = NewRoller()

// Roll parses notation and runs numRolls trials with an independently
// seeded generator.
func Roll(notation string, numRolls int) (Session, error) {
	return defaultRoller.RollNotation(notation, numRolls)
}

// Run is the full pipeline used by tool dispatch: parse, simulate, format.
// Errors are always *ParseError and are safe to show to the caller as-is.
func Run(notation string, numRolls int) (string, error) {
	session, err := Roll(notation, numRolls)
	if err != nil {
		return "", err
	}
	return Format(session), nil
}

package locale

// Message key constants for localization.
// Every key listed here must have an entry in the default locale file.

const (
	// Greetings and help
	Start = "Start"
	Help  = "Help"
	Yo    = "Yo"
	Intro = "Intro"

	JoinButton = "JoinButton"

	// Language selection
	LanguagePrompt      = "LanguagePrompt"
	LanguageName        = "LanguageName"
	LanguageChanged     = "LanguageChanged"
	LanguageUnsupported = "LanguageUnsupported"

	UnknownAction = "UnknownAction"

	// Command menu descriptions
	CommandStartDescription    = "CommandStartDescription"
	CommandHelpDescription     = "CommandHelpDescription"
	CommandYoDescription       = "CommandYoDescription"
	CommandLanguageDescription = "CommandLanguageDescription"
)

// Keys lists every message key the bot renders
var Keys = []string{
	Start,
	Help,
	Yo,
	Intro,
	JoinButton,
	LanguagePrompt,
	LanguageName,
	LanguageChanged,
	LanguageUnsupported,
	UnknownAction,
	CommandStartDescription,
	CommandHelpDescription,
	CommandYoDescription,
	CommandLanguageDescription,
}

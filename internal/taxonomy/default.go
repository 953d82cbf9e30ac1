package taxonomy

// Default returns the compiled-in taxonomy used when no file is configured
// or the configured file cannot be loaded.
func Default() Taxonomy {
	return Taxonomy{
		CategoryEmotion: {
			Description: "Emotional response while watching",
			Tags: []string{
				"moving", "heartwarming", "healing", "sad", "lingering",
				"hopeful", "gloomy", "tense", "scary", "chilling",
				"fluttering", "romantic", "cathartic", "funny", "bright mood",
				"dark mood", "calm", "emotional rollercoaster", "grounded", "dreamlike",
			},
		},
		CategoryStoryFlow: {
			Description: "Narrative progression and pacing",
			Tags: []string{
				"fast paced", "slow paced", "gripping from the start", "strong second half",
				"many twists", "one big twist", "heavy foreshadowing", "easy to follow",
				"demands attention", "memorable ending", "open ending", "clear arc",
				"slice of life", "event driven", "episodic", "steadily escalating",
				"no mid-film lull", "predictable", "unpredictable", "simple story",
			},
		},
		CategoryDirectionMood: {
			Description: "Direction, atmosphere, and style",
			Tags: []string{
				"beautiful visuals", "pretty colors", "dark cinematography", "bright cinematography",
				"memorable score", "strong atmosphere", "stylish direction", "realistic direction",
				"distinct style", "understated direction", "immersive direction", "restrained direction",
				"flashy direction", "striking camerawork", "attractive setting", "strong production design",
				"calm overall tone", "intense overall tone", "good mise en scene", "artistic feel",
			},
		},
		CategoryCharacter: {
			Description: "Characters and their relationships",
			Tags: []string{
				"charming lead", "good supporting cast", "visible character growth", "relatable characters",
				"relationship driven", "family story", "friendship story", "romance story",
				"team play focus", "interesting conflicts", "memorable villain", "layered characters",
				"realistic characters", "unusual characters", "good dialogue", "rich emotional expression",
				"character driven", "balanced ensemble", "single lead focus", "evolving relationships",
			},
		},
	}
}

package dashboard

// Video is a recommended study video.
type Video struct {
	Title    string `json:"title"`
	Channel  string `json:"channel"`
	Duration string `json:"duration"`
	Topic    string `json:"topic"`
}

var catalog = []Video{
	{Title: "Organic Chemistry Basics", Channel: "Physics Wallah", Duration: "45 min", Topic: "Organic Chemistry"},
	{Title: "Thermodynamics Laws", Channel: "Unacademy", Duration: "38 min", Topic: "Thermodynamics"},
	{Title: "Optics and Light", Channel: "Khan Academy", Duration: "52 min", Topic: "Optics"},
	{Title: "Kinematics in One Dimension", Channel: "Physics Wallah", Duration: "41 min", Topic: "Kinematics"},
	{Title: "Electric Field and Coulomb's Law", Channel: "Unacademy", Duration: "47 min", Topic: "Electric Field"},
	{Title: "Quadratic Equations Crash Course", Channel: "Vedantu", Duration: "36 min", Topic: "Quadratic Equations"},
	{Title: "IUPAC Naming Made Easy", Channel: "Physics Wallah", Duration: "33 min", Topic: "Organic Nomenclature"},
	{Title: "Chemical Bonding Explained", Channel: "Khan Academy", Duration: "49 min", Topic: "Chemical Bonding"},
	{Title: "Cell Structure and Organelles", Channel: "Khan Academy", Duration: "40 min", Topic: "Cell Biology"},
	{Title: "Human Physiology One Shot", Channel: "Unacademy", Duration: "58 min", Topic: "Human Physiology"},
	{Title: "Photosynthesis and Plant Physiology", Channel: "Vedantu", Duration: "44 min", Topic: "Plant Physiology"},
	{Title: "Laws of Motion", Channel: "Physics Wallah", Duration: "50 min", Topic: "Mechanics"},
	{Title: "Gravitation Complete Chapter", Channel: "Unacademy", Duration: "55 min", Topic: "Gravitation"},
}

// maxVideos caps the recommendation list.
const maxVideos = 3

// Recommend returns videos for the given weak topics, topic order first.
// When the catalog covers fewer than maxVideos of them, general picks fill
// the remaining slots. No weak topics means no recommendations.
func Recommend(weakTopics []string) []Video {
	out := []Video{}
	if len(weakTopics) == 0 {
		return out
	}
	seen := make(map[string]bool)
	for _, topic := range weakTopics {
		for _, v := range catalog {
			if len(out) == maxVideos {
				return out
			}
			if v.Topic == topic && !seen[v.Title] {
				seen[v.Title] = true
				out = append(out, v)
			}
		}
	}
	for _, v := range catalog {
		if len(out) == maxVideos {
			break
		}
		if !seen[v.Title] {
			seen[v.Title] = true
			out = append(out, v)
		}
	}
	return out
}

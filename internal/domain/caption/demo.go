package caption

import (
	"fmt"
	"math/rand"
	"strings"
)

// demoEntry pairs a canned caption with the statistics displayed for it.
type demoEntry struct {
	caption        string
	objects        int
	processingTime float64
	words          int
	accuracy       int
}

var demoEntries = []demoEntry{
	{
		caption:        "A serene mountain landscape at sunset with vibrant orange and pink hues reflecting off a calm lake, surrounded by evergreen trees and rocky peaks.",
		objects:        8,
		processingTime: 1.8,
		words:          28,
		accuracy:       95,
	},
	{
		caption:        "A bustling city street scene with pedestrians walking past modern glass skyscrapers under a clear blue sky, featuring taxis and urban architecture.",
		objects:        15,
		processingTime: 2.3,
		words:          35,
		accuracy:       92,
	},
	{
		caption:        "A close-up portrait of a young woman with freckles smiling naturally, with soft bokeh lights in the background creating a warm atmosphere.",
		objects:        5,
		processingTime: 1.5,
		words:          22,
		accuracy:       97,
	},
	{
		caption:        "A delicious gourmet burger with melted cheese, crispy bacon, and fresh vegetables on a wooden table, accompanied by golden french fries.",
		objects:        7,
		processingTime: 1.2,
		words:          30,
		accuracy:       94,
	},
	{
		caption:        "An adorable golden retriever puppy playing in a sunlit garden with green grass and colorful flowers, looking curiously at the camera.",
		objects:        4,
		processingTime: 1.0,
		words:          25,
		accuracy:       98,
	},
}

// DemoResult returns one of the canned captions chosen uniformly at random,
// complete with its display statistics.
func DemoResult() Result {
	return demoResultAt(rand.Intn(len(demoEntries)))
}

func demoResultAt(i int) Result {
	entry := demoEntries[i]
	return Result{
		Caption:        entry.caption,
		Confidence:     fmt.Sprintf("%d%% Confidence", entry.accuracy),
		Demo:           true,
		Objects:        entry.objects,
		ProcessingTime: entry.processingTime,
		Words:          entry.words,
		Accuracy:       entry.accuracy,
	}
}

// WordCount counts the space-separated words of a caption, matching the
// statistic shown for relay-produced captions.
func WordCount(caption string) int {
	return len(strings.Split(caption, " "))
}

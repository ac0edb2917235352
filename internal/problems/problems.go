package problems

// Difficulty buckets, numeric on the wire.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return "unknown"
}

// Problem is one entry of the challenge catalog. ID is the stable identity;
// rooms track completion by it, never by struct equality.
type Problem struct {
	URL        string     `json:"url"`
	ID         int        `json:"id"`
	Difficulty Difficulty `json:"difficulty"`
	Name       string     `json:"name"`
	Premium    bool       `json:"premium"`
	Topics     []string   `json:"topics"`
}

// Filter narrows selection. Zero-length slices mean "no restriction".
type Filter struct {
	AllowPremium bool         `json:"allowPremium"`
	Difficulty   []Difficulty `json:"difficulty,omitempty"`
	Topics       []string     `json:"topics,omitempty"`
}

func (f *Filter) matches(p Problem) bool {
	if f == nil {
		return true
	}
	if p.Premium && !f.AllowPremium {
		return false
	}
	if len(f.Difficulty) > 0 {
		ok := false
		for _, d := range f.Difficulty {
			if d == p.Difficulty {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Topics) > 0 {
		want := make(map[string]struct{}, len(f.Topics))
		for _, t := range f.Topics {
			want[t] = struct{}{}
		}
		ok := false
		for _, t := range p.Topics {
			if _, hit := want[t]; hit {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// builtin is the seed catalog used when the problems table is empty or the
// database cannot be reached at boot.
var builtin = []Problem{
	{URL: "https://leetcode.com/problems/two-sum/", ID: 1, Difficulty: Easy, Name: "Two Sum", Topics: []string{"array", "hash-table"}},
	{URL: "https://leetcode.com/problems/add-two-numbers/", ID: 2, Difficulty: Medium, Name: "Add Two Numbers", Topics: []string{"linked-list", "math"}},
	{URL: "https://leetcode.com/problems/longest-substring-without-repeating-characters/", ID: 3, Difficulty: Medium, Name: "Longest Substring Without Repeating Characters", Topics: []string{"string", "sliding-window"}},
	{URL: "https://leetcode.com/problems/median-of-two-sorted-arrays/", ID: 4, Difficulty: Hard, Name: "Median of Two Sorted Arrays", Topics: []string{"array", "binary-search"}},
	{URL: "https://leetcode.com/problems/reverse-integer/", ID: 7, Difficulty: Medium, Name: "Reverse Integer", Topics: []string{"math"}},
	{URL: "https://leetcode.com/problems/palindrome-number/", ID: 9, Difficulty: Easy, Name: "Palindrome Number", Topics: []string{"math"}},
	{URL: "https://leetcode.com/problems/container-with-most-water/", ID: 11, Difficulty: Medium, Name: "Container With Most Water", Topics: []string{"array", "two-pointers"}},
	{URL: "https://leetcode.com/problems/valid-parentheses/", ID: 20, Difficulty: Easy, Name: "Valid Parentheses", Topics: []string{"string", "stack"}},
	{URL: "https://leetcode.com/problems/merge-two-sorted-lists/", ID: 21, Difficulty: Easy, Name: "Merge Two Sorted Lists", Topics: []string{"linked-list", "recursion"}},
	{URL: "https://leetcode.com/problems/merge-k-sorted-lists/", ID: 23, Difficulty: Hard, Name: "Merge k Sorted Lists", Topics: []string{"linked-list", "heap", "divide-and-conquer"}},
	{URL: "https://leetcode.com/problems/trapping-rain-water/", ID: 42, Difficulty: Hard, Name: "Trapping Rain Water", Topics: []string{"array", "two-pointers", "stack"}},
	{URL: "https://leetcode.com/problems/maximum-subarray/", ID: 53, Difficulty: Medium, Name: "Maximum Subarray", Topics: []string{"array", "dynamic-programming"}},
	{URL: "https://leetcode.com/problems/climbing-stairs/", ID: 70, Difficulty: Easy, Name: "Climbing Stairs", Topics: []string{"math", "dynamic-programming"}},
	{URL: "https://leetcode.com/problems/word-search/", ID: 79, Difficulty: Medium, Name: "Word Search", Topics: []string{"array", "backtracking"}},
	{URL: "https://leetcode.com/problems/binary-tree-inorder-traversal/", ID: 94, Difficulty: Easy, Name: "Binary Tree Inorder Traversal", Topics: []string{"tree", "stack"}},
	{URL: "https://leetcode.com/problems/best-time-to-buy-and-sell-stock/", ID: 121, Difficulty: Easy, Name: "Best Time to Buy and Sell Stock", Topics: []string{"array", "dynamic-programming"}},
	{URL: "https://leetcode.com/problems/word-ladder/", ID: 127, Difficulty: Hard, Name: "Word Ladder", Topics: []string{"string", "breadth-first-search"}},
	{URL: "https://leetcode.com/problems/lru-cache/", ID: 146, Difficulty: Medium, Name: "LRU Cache", Topics: []string{"hash-table", "linked-list", "design"}},
	{URL: "https://leetcode.com/problems/min-stack/", ID: 155, Difficulty: Medium, Name: "Min Stack", Topics: []string{"stack", "design"}},
	{URL: "https://leetcode.com/problems/course-schedule/", ID: 207, Difficulty: Medium, Name: "Course Schedule", Topics: []string{"graph", "topological-sort"}},
}

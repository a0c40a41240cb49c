package models

// CommentNode is one comment in an assembled discussion thread with its
// replies grouped beneath it.
type CommentNode struct {
	ForumComment
	IsLiked bool           `json:"isLiked"`
	Replies []*CommentNode `json:"replies"`
}

// BuildThread assembles a forest from a flat comment list using parent
// pointers. Comments keep the order of the input slice at every level, so the
// store's ordering (creation order) carries through. A comment whose parent is
// missing from the list is treated as top-level rather than dropped.
//
// The grouping is fully recursive: replies-to-replies nest correctly even
// though the composer UI only offers one level.
func BuildThread(comments []ForumComment) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(comments))
	ordered := make([]*CommentNode, 0, len(comments))

	for i := range comments {
		n := &CommentNode{ForumComment: comments[i], Replies: []*CommentNode{}}
		nodes[n.ID] = n
		ordered = append(ordered, n)
	}

	var roots []*CommentNode
	for _, n := range ordered {
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok && parent != n {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// MarkLiked flags every node whose id appears in likedIDs, recursively.
func MarkLiked(nodes []*CommentNode, likedIDs map[string]bool) {
	for _, n := range nodes {
		n.IsLiked = likedIDs[n.ID]
		MarkLiked(n.Replies, likedIDs)
	}
}

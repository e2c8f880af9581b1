package s3util

// projectTag is the URL-encoded S3 object tagging string for cost allocation.
const projectTag = "Project=kidvid-composer"

// ProjectTagging returns the tagging string for PutObjectInput.Tagging.
func ProjectTagging() *string {
	t := projectTag
	return &t
}

// Package searchapi decodes OpenSearch REST responses shared by the index,
// alias and bulk components.
package searchapi

// Package services holds brahma's core: indexing a workspace into chunks,
// retrieving the chunks nearest a question, composing a grounded prompt,
// and asking the language model for an answer.
//
// Services only see driven ports. Concrete loaders, backends and the vector
// index are injected through EngineDeps.
package services

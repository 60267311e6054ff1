// Command anvil runs the SkillForge LLM orchestration runtime.
package main

func main() {
	Execute()
}
